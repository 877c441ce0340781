package app

import (
	"context"
	"fmt"
	"time"

	"guardquote/internal/config"
	"guardquote/internal/database"
	"guardquote/internal/database/migration"
	dbpostgres "guardquote/internal/database/postgres"
	"guardquote/internal/database/seeder"
	"guardquote/internal/infrastructure/cache"

	"go.uber.org/zap"
)

type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
}

// NewContainer opens the database, applies pending migrations when
// DB_AUTO_MIGRATE is on, seeds demo data outside production when
// DB_RUN_SEEDERS is on, and connects the cache. A missing cache is not fatal.
func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		r := migration.Runner{Dir: cfg.Database.MigrationsDir, Logger: logger.Named("migration")}
		if err := r.Run(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	if cfg.Database.RunSeeders {
		if cfg.App.IsProduction() {
			logger.Warn("DB_RUN_SEEDERS ignored in production")
		} else {
			sr := seeder.Runner{Seeders: seeder.Defaults(), Logger: logger.Named("seeder")}
			if err := sr.Run(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("run seeders: %w", err)
			}
		}
	}

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger.Named("cache")),
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if err := c.Cache.Close(); err != nil {
		c.Logger.Warn("close cache", zap.Error(err))
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
