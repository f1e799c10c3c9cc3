package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/scoreboard/internal/api/response"
)

// healthTimeout bounds the storage ping
const healthTimeout = 2 * time.Second

// Pinger reports whether a backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and storage status
type HealthHandler struct {
	storage     Pinger
	storageType string
	logger      *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage Pinger, storageType string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:     storage,
		storageType: storageType,
		logger:      logger,
	}
}

// Get handles GET /api/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("storage health check failed", slog.String("storage", h.storageType), slog.Any("error", err))
		response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{
			Status:   "degraded",
			Storage:  h.storageType,
			Database: "disconnected",
		})
		return
	}

	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status:   "ok",
		Storage:  h.storageType,
		Database: "connected",
	})
}
