package routes

import (
	"guardquote/internal/config"
	"guardquote/internal/database"
	v1 "guardquote/internal/delivery/http/routes/v1"
	"guardquote/internal/infrastructure/cache"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

func RegisterV1(r fiber.Router, cfg config.Config, db database.DB, listCache *cache.Redis, logger *zap.Logger) {
	if r == nil {
		return
	}

	v1.Register(r, cfg, db, listCache, logger)
}
