package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/confengine/internal/api/middleware"
	"github.com/phrazzld/confengine/internal/config"
)

// RouterOptions holds the router's dependencies.
type RouterOptions struct {
	Config   *config.ResolvedConfig
	API      config.APIConfig
	Security config.SecurityConfig
	Logger   *slog.Logger

	// Tokens guards the /config routes. When nil those routes are served
	// without authentication.
	Tokens middleware.TokenValidator
}

// NewRouter builds the HTTP handler. /health is always served; /config and
// /config/warnings only outside production.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace(opts.Logger))
	r.Use(middleware.SecurityHeaders)
	if opts.Security.ForceHTTPS() {
		r.Use(middleware.RequireHTTPS)
	}
	r.Use(middleware.BodyLimit(opts.API.MaxContentLength()))
	r.Use(middleware.CORS(opts.API))

	h := NewConfigHandler(opts.Config)
	r.Get("/health", h.Health)

	if opts.Config.Environment() != config.Production {
		r.Group(func(r chi.Router) {
			if opts.Tokens != nil {
				r.Use(middleware.NewAuthMiddleware(opts.Tokens).Authenticate)
			}
			r.Get("/config", h.Summary)
			r.Get("/config/warnings", h.Warnings)
		})
	}

	return r
}
