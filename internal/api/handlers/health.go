package handlers

import (
	"net/http"

	"github.com/harishram/fintrack-backend/internal/api/dto"
)

// HealthHandler responds to health check requests.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.NewHealthResponse())
}
