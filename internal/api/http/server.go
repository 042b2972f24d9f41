package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/api/http/handlers"
	"github.com/spec-kit/client-query-service/internal/auth"
	"github.com/spec-kit/client-query-service/internal/config"
	"github.com/spec-kit/client-query-service/internal/events"
	"github.com/spec-kit/client-query-service/internal/observability"
	"github.com/spec-kit/client-query-service/internal/persistence"
	"github.com/spec-kit/client-query-service/internal/repository"
	"github.com/spec-kit/client-query-service/internal/service"
)

// Dependencies are the long-lived collaborators the HTTP app is built from.
type Dependencies struct {
	Config     config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Store      *repository.Store
	Redis      *persistence.Redis
	Dispatcher events.Dispatcher
}

// NewApp builds services and handlers and returns a ready fiber app.
func NewApp(deps Dependencies) *fiber.App {
	cfg := deps.Config

	var revocations auth.RevocationStore
	if deps.Redis.Configured() {
		revocations = auth.NewRedisRevocationStore(deps.Redis.Client)
	}

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:    deps.Store.Users,
		Revocations: revocations,
		Dispatcher:  deps.Dispatcher,
		Logger:      deps.Logger,
	})
	queryService := service.NewQueryService(service.QueryDependencies{
		QueryRepo:     deps.Store.Queries,
		Dispatcher:    deps.Dispatcher,
		Logger:        deps.Logger,
		IDMaxAttempts: cfg.Query.IDMaxAttempts,
	})
	analyticsService := service.NewAnalyticsService(queryService)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), revocations, deps.Logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, deps.Logger, deps.Metrics, cfg.App.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Store, deps.Redis, deps.Metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Queries:        handlers.NewQueriesHandler(queryService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		AuthMiddleware: authMiddleware,
	})
	return app
}
