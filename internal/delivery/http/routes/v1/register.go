package v1

import (
	"guardquote/internal/config"
	"guardquote/internal/database"
	"guardquote/internal/delivery/http/handler"
	"guardquote/internal/delivery/http/middleware"
	"guardquote/internal/infrastructure/cache"
	"guardquote/internal/pkg/jwt"
	"guardquote/internal/repository"
	"guardquote/internal/usecase"
	ucquote "guardquote/internal/usecase/quote"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Register wires repositories, services and handlers for /api/v1. A nil
// listCache disables quote list caching.
func Register(r fiber.Router, cfg config.Config, db database.DB, listCache *cache.Redis, logger *zap.Logger) {
	if r == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
		cfg.App.AppName,
	)

	authMw := middleware.NewAuthMiddleware(jwtSvc)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	userRepo := repository.NewPostgresUserRepository(db)
	quoteRepo := repository.NewPostgresQuoteRepository(db)

	var qc ucquote.ListCache
	if listCache != nil {
		qc = listCache
	}
	quoteSvc := ucquote.NewService(quoteRepo, userRepo, qc, logger.Named("quotes"), ucquote.Options{
		Policy:       cfg.Quotes.AccessPolicy,
		ListCacheTTL: cfg.Quotes.ListCacheTTL,
	})

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	userUC := usecase.NewUserUsecase(userRepo, quoteSvc, logger.Named("users"))
	quoteUC := usecase.NewQuoteUsecase(quoteSvc, userRepo)

	authHandler := handler.NewAuthHandler(authUC)
	userHandler := handler.NewUserHandler(userUC)
	quoteHandler := handler.NewQuoteHandler(quoteUC)

	authGroup := r.Group("/auth", authLimiter.Middleware())
	authHandler.RegisterRoutes(authGroup)

	protected := r.Group("", authMw.Middleware())

	RegisterUsers(protected.Group("/users"), userHandler)
	RegisterQuotes(protected.Group("/quotes"), quoteHandler)
}
