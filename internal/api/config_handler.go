package api

import (
	"net/http"

	"github.com/phrazzld/confengine/internal/api/shared"
	"github.com/phrazzld/confengine/internal/config"
	"github.com/phrazzld/confengine/internal/platform/logger"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Warnings    int    `json:"warnings"`
}

// WarningsResponse is the body of GET /config/warnings.
type WarningsResponse struct {
	Environment string   `json:"environment"`
	Warnings    []string `json:"warnings"`
}

// ConfigHandler serves a resolved configuration snapshot.
type ConfigHandler struct {
	cfg *config.ResolvedConfig
}

// NewConfigHandler creates a ConfigHandler for cfg.
func NewConfigHandler(cfg *config.ResolvedConfig) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// Health reports that the server is up and which environment it resolved.
func (h *ConfigHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:      "ok",
		Environment: h.cfg.Environment().String(),
		Warnings:    len(h.cfg.Warnings()),
	})
}

// Summary writes the masked configuration summary as plain text.
func (h *ConfigHandler) Summary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(h.cfg.Summary())); err != nil {
		logger.FromContext(r.Context()).Error("failed to write configuration summary", "error", err)
	}
}

// Warnings lists the warnings collected during resolution.
func (h *ConfigHandler) Warnings(w http.ResponseWriter, r *http.Request) {
	warnings := h.cfg.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, WarningsResponse{
		Environment: h.cfg.Environment().String(),
		Warnings:    warnings,
	})
}
