package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	auth "github.com/mind-engage/examinfo/internal/auth/middleware"
	"github.com/mind-engage/examinfo/internal/cache"
	"github.com/mind-engage/examinfo/internal/catalog"
	"github.com/mind-engage/examinfo/internal/logging"
	"github.com/mind-engage/examinfo/internal/rbac"
	"github.com/mind-engage/examinfo/internal/score"
	"github.com/mind-engage/examinfo/internal/storage"
)

// Deps is everything the gateway routes need. Syncer may be nil when no
// upstream is configured; Ready may be nil.
type Deps struct {
	Store    catalog.Store
	Scores   *score.Service
	Cache    cache.Cache
	CacheTTL time.Duration
	Blobs    storage.BlobStore
	Events   EventLog
	Syncer   SyncRunner

	// SyncTimeout bounds POST /admin/sync; zero means 30 minutes.
	SyncTimeout time.Duration

	Auth  *auth.AuthService
	Admin auth.Admin

	Log         *zap.Logger
	CORSOrigins []string
	Ready       func(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Cache == nil {
		d.Cache = cache.NewMemory()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.Middleware(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	// Public read API
	r.Get("/admissions", SearchAdmissionsHandler(d.Store))
	r.Get("/admissions/{id}", GetAdmissionHandler(d.Store, d.Scores))
	r.Get("/admissions/{id}/chart", ChartHandler(d.Store, d.Scores, d.Cache, d.CacheTTL))
	r.Get("/universities", ListUniversitiesHandler(d.Store))
	r.Post("/scores/validate", ValidateScoresHandler(d.Scores, d.Cache, d.CacheTTL))

	if d.Auth != nil {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Admin))

		// Admin API (JWT → role in context → RBAC)
		r.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth))

			pr.With(rbac.Require("catalog:import")).
				Post("/admin/import", ImportHandler(d.Store, d.Scores, d.Events, d.Blobs, d.Cache, d.Log))
			pr.With(rbac.Require("catalog:sync")).
				Post("/admin/sync", SyncHandler(d.Syncer, d.SyncTimeout, d.Log.Named("sync")))
			if d.Events != nil {
				pr.With(rbac.RequireAny("catalog:import", "catalog:sync")).
					Get("/admin/events", ListEventsHandler(d.Events))
			}
		})
	}
	return r
}
