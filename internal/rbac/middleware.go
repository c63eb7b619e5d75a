package rbac

import (
	"fmt"
	"net/http"
)

var defaultChecker = NewChecker(nil)

// Require lets a request through when its role holds perm under the
// default RolePermissions.
func Require(perm string) func(http.Handler) http.Handler { return defaultChecker.Require(perm) }

// RequireAny lets a request through when its role holds one of perms.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return defaultChecker.RequireAny(perms...)
}

func (c *Checker) Require(perm string) func(http.Handler) http.Handler {
	return c.guard(perm, func(role string) bool { return c.Has(role, perm) })
}

func (c *Checker) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return c.guard(fmt.Sprint(perms), func(role string) bool { return c.Any(role, perms...) })
}

// guard answers 403 naming the missing permission; requests without a role
// in context never pass.
func (c *Checker) guard(want string, allowed func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role := RoleFromContext(r.Context()); role == "" || !allowed(role) {
				http.Error(w, "forbidden: requires "+want, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
