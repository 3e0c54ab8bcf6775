package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/vidtube-api/internal/account"
	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/auth"
	"github.com/redmonkez12/vidtube-api/internal/config"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
	"github.com/redmonkez12/vidtube-api/internal/logging"
	"github.com/redmonkez12/vidtube-api/internal/metrics"
	"github.com/redmonkez12/vidtube-api/internal/profile"
)

// Handlers groups the feature handlers mounted under /api/v1/users
type Handlers struct {
	Auth    *auth.Handler
	Account *account.Handler
	Profile *profile.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders(cfg.Server.IsDevelopment()))
	r.Use(middleware.Recoverer)              // Recover from panics
	r.Use(middleware.RequestID)              // Add request ID
	r.Use(RealIP(cfg.Server.TrustedProxies)) // Client IP; forwarding headers only from trusted proxies
	r.Use(logging.RequestLogger(logger))     // Structured logging with request context
	r.Use(metrics.Middleware)                // Request count and latency per route
	r.Use(middleware.Compress(5))            // Compress responses

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", httputil.Handle(h.Auth.Register))
		r.Post("/login", httputil.Handle(h.Auth.Login))
		r.Post("/refresh-token", httputil.Handle(h.Auth.RefreshToken))

		r.With(authMiddleware.OptionalAuth).Get("/channel/{username}", httputil.Handle(h.Profile.Channel))

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Post("/logout", httputil.Handle(h.Auth.Logout))
			r.Patch("/password", httputil.Handle(h.Auth.ChangePassword))

			r.Get("/me", httputil.Handle(h.Account.Me))
			r.Patch("/me", httputil.Handle(h.Account.Update))
			r.Patch("/me/avatar", httputil.Handle(h.Account.UpdateAvatar))
			r.Patch("/me/cover-image", httputil.Handle(h.Account.UpdateCoverImage))

			r.Get("/watch-history", httputil.Handle(h.Profile.WatchHistory))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, "route not found", apperror.CodeNotFound, http.StatusNotFound)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
