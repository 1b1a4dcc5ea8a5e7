package handlers

import (
	"net/http"

	"github.com/rreusch2/fluxstreams/pkg/api/types"
)

// HealthHandler serves GET /api/health. It only proves the process is up.
type HealthHandler struct{}

// NewHealthHandler creates the liveness endpoint.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types.WriteJSON(w, http.StatusOK, types.HealthResponse{
		Status:  "healthy",
		Message: "API is running correctly",
	})
}
