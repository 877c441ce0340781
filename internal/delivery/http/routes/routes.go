package routes

import (
	"guardquote/internal/config"
	"guardquote/internal/database"
	"guardquote/internal/delivery/http/handler"
	"guardquote/internal/infrastructure/cache"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type Registry struct {
	cfg    config.Config
	db     database.DB
	cache  *cache.Redis
	logger *zap.Logger
	health *handler.HealthHandler
}

// NewRegistry builds the route table. listCache may be nil.
func NewRegistry(cfg config.Config, db database.DB, listCache *cache.Redis, logger *zap.Logger) *Registry {
	var cachePinger handler.Pinger
	if listCache.Available() {
		cachePinger = listCache
	}
	return &Registry{
		cfg:    cfg,
		db:     db,
		cache:  listCache,
		logger: logger,
		health: handler.NewHealthHandler(db, cachePinger),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.cfg, r.db, r.cache, r.logger)
}
