package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	Verbose  bool

	DBDriver string
	DBDSN    string

	BlobBasePath string // raw import snapshots

	AuthHMACSecret string
	AdminUser      string
	AdminPassHash  string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// Response cache. Empty RedisAddr selects the in-process cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	CacheTTL      time.Duration

	// Upstream university/subject-score REST API
	UpstreamBaseURL      string
	UpstreamTokenURL     string // optional OAuth2 client-credentials
	UpstreamClientID     string
	UpstreamClientSecret string
	UpstreamTimeout      time.Duration
	UpstreamRetries      int
	SyncConcurrency      int
	SyncTimeout          time.Duration // bounds POST /admin/sync

	RulesFile string // YAML overriding subject order / validation range
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),
		Verbose:  envBool("VERBOSE", false),

		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:      envOr("ADMIN_USER", "admin"),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://examinfo.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		RedisPrefix:   envOr("REDIS_PREFIX", "examinfo:"),
		CacheTTL:      envDuration("CACHE_TTL", 10*time.Minute),

		UpstreamBaseURL:      envOr("UPSTREAM_BASE_URL", "http://localhost:9000/api"),
		UpstreamTokenURL:     os.Getenv("UPSTREAM_TOKEN_URL"),
		UpstreamClientID:     os.Getenv("UPSTREAM_CLIENT_ID"),
		UpstreamClientSecret: os.Getenv("UPSTREAM_CLIENT_SECRET"),
		UpstreamTimeout:      envDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		UpstreamRetries:      envInt("UPSTREAM_RETRIES", 2),
		SyncConcurrency:      envInt("SYNC_CONCURRENCY", 4),
		SyncTimeout:          envDuration("SYNC_TIMEOUT", 30*time.Minute),

		RulesFile: os.Getenv("RULES_FILE"),
	}
}

// CORSOrigins returns the allow-list for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}
func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return d
	}
	return def
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
