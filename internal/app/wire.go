// Package app wires config into the stores and clients both binaries share.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/mind-engage/examinfo/internal/cache"
	"github.com/mind-engage/examinfo/internal/catalog"
	"github.com/mind-engage/examinfo/internal/config"
	"github.com/mind-engage/examinfo/internal/db"
	syncx "github.com/mind-engage/examinfo/internal/sync"
	"github.com/mind-engage/examinfo/internal/upstream"
)

// Catalog is the opened database with the stores built on it.
type Catalog struct {
	DB     *sql.DB
	Store  *catalog.SQLStore
	Events *syncx.EventRepo
}

func OpenCatalog(ctx context.Context, cfg config.Config) (*Catalog, error) {
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return &Catalog{
		DB:     dbh,
		Store:  catalog.NewSQLStore(dbh, cfg.DBDriver),
		Events: syncx.NewEventRepo(dbh),
	}, nil
}

func (c *Catalog) Close() error { return c.DB.Close() }

// NewUpstream builds the REST client, with client-credentials auth when a
// token URL is configured.
func NewUpstream(cfg config.Config) *upstream.Client {
	opts := []upstream.Option{
		upstream.WithTimeout(cfg.UpstreamTimeout),
		upstream.WithRetries(cfg.UpstreamRetries),
	}
	if cfg.UpstreamTokenURL != "" {
		opts = append(opts, upstream.WithClientCredentials(cfg.UpstreamTokenURL, cfg.UpstreamClientID, cfg.UpstreamClientSecret))
	}
	return upstream.New(cfg.UpstreamBaseURL, opts...)
}

func NewSyncer(cfg config.Config, c *Catalog, log *zap.Logger) *syncx.Syncer {
	return syncx.New(NewUpstream(cfg), c.Store, c.Events, cfg.SyncConcurrency, log)
}

// NewCache returns Redis when REDIS_ADDR is set and an in-process cache
// otherwise. The returned close func is never nil.
func NewCache(ctx context.Context, cfg config.Config, log *zap.Logger) (cache.Cache, func() error, error) {
	if cfg.RedisAddr == "" {
		log.Info("using in-process cache")
		return cache.NewMemory(), func() error { return nil }, nil
	}
	r, err := cache.NewRedis(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.RedisPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("using redis cache", zap.String("addr", cfg.RedisAddr), zap.String("prefix", cfg.RedisPrefix))
	return r, r.Close, nil
}
