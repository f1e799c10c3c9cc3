package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scoreboard/internal/api/apierr"
	"github.com/mcoot/scoreboard/internal/api/handler"
	"github.com/mcoot/scoreboard/internal/api/middleware"
	"github.com/mcoot/scoreboard/internal/services/auth"
	"github.com/mcoot/scoreboard/internal/services/scores"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	AuthService   *auth.Service
	ScoresService *scores.Service
	TokenVerifier middleware.TokenVerifier
	Users         middleware.UserLookup
	Storage       handler.Pinger
	StorageType   string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	scoreHandler := handler.NewScoreHandler(cfg.ScoresService)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.StorageType, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.TokenVerifier, cfg.Users)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Account routes (no auth required for registering/logging in)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	// Score routes (all require auth)
	scoreRoutes := api.PathPrefix("/scores").Subrouter()
	scoreRoutes.Use(authMiddleware)
	scoreRoutes.HandleFunc("", scoreHandler.List).Methods(http.MethodGet)
	scoreRoutes.HandleFunc("", scoreHandler.Create).Methods(http.MethodPost)
	scoreRoutes.HandleFunc("/{id}", scoreHandler.Update).Methods(http.MethodPut)
	scoreRoutes.HandleFunc("/{id}", scoreHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewMethodNotAllowedError())
	})

	return r
}
