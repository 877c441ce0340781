package v1

import (
	"guardquote/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterQuotes(r fiber.Router, quoteHandler *handler.QuoteHandler) {
	if r == nil {
		return
	}
	if quoteHandler == nil {
		return
	}

	quoteHandler.RegisterRoutes(r)
}
