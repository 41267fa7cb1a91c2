package routes

import (
	"log"

	"account-service/internal/config"
	"account-service/internal/database"
	"account-service/internal/delivery/http/handler"
	"account-service/internal/delivery/http/middleware"
	"account-service/internal/infrastructure/ratelimit"
	"account-service/internal/repository"
	authuc "account-service/internal/usecase/auth"
	profileuc "account-service/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
)

// Deps carries the shared collaborators route registration wires the
// handlers to.
type Deps struct {
	Config  config.Config
	DB      database.DB
	Counter ratelimit.Counter
	Avatars profileuc.AvatarStore
	Logger  *log.Logger
}

func Register(app *fiber.App, d Deps) {
	if app == nil {
		return
	}

	handler.NewHealthHandler().RegisterRoutes(app)

	api := app.Group("/api")
	registerAPI(api, d)
}

// registerAPI wires /api/auth plus the two versioned profile views. Both
// versions sit behind the same middleware chain — auth first, throttle
// second — and share one "profile" budget, so unauthenticated calls never
// consume quota and switching versions does not double it.
func registerAPI(r fiber.Router, d Deps) {
	userRepo := repository.NewPostgresUserRepository(d.DB)
	tokenRepo := repository.NewPostgresTokenRepository(d.DB)
	profileRepo := repository.NewPostgresProfileRepository(d.DB)

	authUC := authuc.NewService(userRepo, tokenRepo)
	profileUC := profileuc.NewService(profileRepo, d.Avatars)

	authMw := middleware.NewAuthMiddleware(authUC)
	limiter := ratelimit.NewFixedWindowLimiter(
		d.Counter,
		d.Config.Throttle.ProfileLimit,
		d.Config.Throttle.ProfileWindow,
		d.Logger,
	)
	throttleMw := middleware.NewThrottleMiddleware(limiter, "profile")

	authHandler := handler.NewAuthHandler(authUC)
	profileHandler := handler.NewProfileHandler(profileUC)

	authHandler.RegisterRoutes(r.Group("/auth"))

	v1 := r.Group("/v1", authMw.Middleware(), throttleMw.Middleware())
	profileHandler.RegisterV1Routes(v1)

	v2 := r.Group("/v2", authMw.Middleware(), throttleMw.Middleware())
	profileHandler.RegisterV2Routes(v2)
}
