package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"viewer": {
		"catalog:read",
		"scores:validate",
	},
	"editor": {
		"catalog:read",
		"catalog:import",
		"scores:validate",
	},
	"admin": {
		"*", // everything
	},
}
