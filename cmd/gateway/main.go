package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	api "github.com/mind-engage/examinfo/internal/api/http"
	"github.com/mind-engage/examinfo/internal/app"
	auth "github.com/mind-engage/examinfo/internal/auth/middleware"
	"github.com/mind-engage/examinfo/internal/config"
	"github.com/mind-engage/examinfo/internal/logging"
	storage "github.com/mind-engage/examinfo/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	log, err := logging.New(cfg.Mode == config.ModeOnline, cfg.Verbose)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("gateway stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cat, err := app.OpenCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}

	c, closeCache, err := app.NewCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}

	h := api.NewRouter(api.Deps{
		Store:    cat.Store,
		Scores:   rules.Service(),
		Cache:    c,
		CacheTTL: cfg.CacheTTL,
		Blobs:    bs,
		Events:   cat.Events,
		Syncer:   app.NewSyncer(cfg, cat, log.Named("sync")),

		SyncTimeout: cfg.SyncTimeout,

		Auth:  auth.NewAuthService(cfg.AuthHMACSecret),
		Admin: auth.Admin{User: cfg.AdminUser, PassHash: cfg.AdminPassHash},

		Log:         log.Named("http"),
		CORSOrigins: cfg.CORSOrigins(),
		Ready:       cat.DB.PingContext,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("mode", string(cfg.Mode)),
			zap.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
