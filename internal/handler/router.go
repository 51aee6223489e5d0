package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/auth"
	"github.com/prn-tf/bookhive/internal/metrics"
	"github.com/prn-tf/bookhive/internal/repository"
)

// Router assembles the HTTP API.
type Router struct {
	authHandler     *AuthHandler
	profileHandler  *ProfileHandler
	bookHandler     *BookHandler
	favoriteHandler *FavoriteHandler
	tokens          *auth.TokenManager
	health          repository.DatabaseHealth
	metricsEnabled  bool
	metricsPath     string
	logger          zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthHandler     *AuthHandler
	ProfileHandler  *ProfileHandler
	BookHandler     *BookHandler
	FavoriteHandler *FavoriteHandler
	Tokens          *auth.TokenManager
	Health          repository.DatabaseHealth
	MetricsEnabled  bool
	MetricsPath     string
	Logger          zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		authHandler:     config.AuthHandler,
		profileHandler:  config.ProfileHandler,
		bookHandler:     config.BookHandler,
		favoriteHandler: config.FavoriteHandler,
		tokens:          config.Tokens,
		health:          config.Health,
		metricsEnabled:  config.MetricsEnabled,
		metricsPath:     config.MetricsPath,
		logger:          config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	if rt.metricsEnabled {
		r.Use(metrics.Middleware)
	}

	// Unauthenticated surface
	r.Get("/health", rt.handleHealth)
	if rt.metricsEnabled {
		r.Handle(rt.metricsPath, metrics.Handler())
	}
	rt.authHandler.RegisterRoutes(r)
	rt.bookHandler.RegisterRoutes(r)
	rt.favoriteHandler.RegisterRoutes(r)

	// Verified-bearer surface
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(rt.tokens))
		rt.authHandler.RegisterProtectedRoutes(r)
		rt.profileHandler.RegisterRoutes(r)
	})

	// The delete route keeps its historical presence-only bearer gate.
	r.Group(func(r chi.Router) {
		r.Use(auth.PresenceOnly)
		rt.favoriteHandler.RegisterDeleteRoute(r)
	})

	return r
}

// handleHealth pings the database and reports status.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if rt.health != nil {
		if err := rt.health.Ping(ctx); err != nil {
			rt.logger.Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
