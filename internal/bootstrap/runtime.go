// Package bootstrap wires the process-wide runtime: database, Redis and seed data.
package bootstrap

import (
	"fmt"
	"log/slog"

	"workshophub/internal/cache"
	"workshophub/internal/config"
	"workshophub/internal/database"
	"workshophub/internal/middleware"
	"workshophub/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCatalog upserts the workshop catalog (cfg.SeedCatalog, or the built-in one).
	SeedCatalog bool
	// DemoUsers creates that many demo accounts after the catalog.
	DemoUsers int
}

// InitRuntime connects to the database and Redis and optionally seeds data.
// The returned Redis client is nil when Redis is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedCatalog {
		catalog, err := seed.LoadCatalog(cfg.SeedCatalog)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		if err := seed.Catalog(db, catalog); err != nil {
			return nil, nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		middleware.Logger.Info("catalog seeded",
			slog.Int("categories", len(catalog.Categories)),
			slog.Int("workshops", len(catalog.Workshops)))
	}

	if opts.DemoUsers > 0 {
		if _, err := seed.Demo(db, seed.DemoOptions{Users: opts.DemoUsers}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo users: %w", err)
		}
	}

	return db, r, nil
}
