package handler

import (
	"context"
	"time"

	"guardquote/internal/delivery/http/middleware"
	"guardquote/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Pinger is anything the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler takes the database and an optional cache. A failing
// database makes the service unhealthy; a failing cache only degrades it.
func NewHealthHandler(db Pinger, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Check)
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	data := fiber.Map{"database": "up", "cache": "disabled"}
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
		}
	}
	if h.cache != nil {
		data["cache"] = "up"
		if err := h.cache.Ping(ctx); err != nil {
			data["cache"] = "down"
		}
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
