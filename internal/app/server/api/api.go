//POST   /api/auth/register   # Create account (public)
//POST   /api/auth/login      # Authenticate, returns token pair (public)
//POST   /api/auth/refresh    # New access token from refresh token (public)
//POST   /api/auth/logout     # Revoke refresh token (public)
//GET    /api/auth/me         # Current identity (auth)
//POST   /api/sync/push       # Push one collection (auth)
//GET    /api/sync/pull       # Pull collections (auth)
//POST   /api/sync/migrate    # Migrate full local dataset (auth)
//DELETE /api/sync/clear      # Clear cloud data (auth)
//GET    /api/v1/health       # Health check (public)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	authAPI "initium/internal/app/server/api/http/auth"
	healthAPI "initium/internal/app/server/api/http/health"
	"initium/internal/app/server/api/http/middleware"
	"initium/internal/app/server/api/http/middleware/auth"
	"initium/internal/app/server/api/http/middleware/logger"
	syncAPI "initium/internal/app/server/api/http/sync"
	"initium/internal/app/server/config"
	"initium/internal/domain/session"
	"initium/internal/domain/sync"
	"initium/internal/domain/user"
	"initium/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health *healthAPI.Handler
	Auth   *authAPI.Handler
	Sync   *syncAPI.Handler
}

// New builds a *chi.Mux with every operation registered through huma.
func New(cfg *config.Config, storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("Initium API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(cfg, storage, log)
	h.Health.SetupRoutes(API)
	h.Auth.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func handlers(cfg *config.Config, storage *postgres.Storage, log *slog.Logger) *Handlers {
	tokenRepo := postgres.NewTokenRepository(storage.Pool(), log)
	sessionService := session.NewService(tokenRepo, cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(storage.Pool(), log)
	userService := user.NewService(userRepo, user.NewValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	publicChain := middlewares.GetAllAndClear()
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	authHandler := authAPI.NewHandler(userService, sessionService, log, publicChain, middlewares.GetAllAndClear())

	documentRepo := postgres.NewDocumentRepository(storage.Pool(), log)
	syncService := sync.NewService(documentRepo, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(syncService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Auth:   authHandler,
		Sync:   syncHandler,
	}
}
