package api

import (
	"net/http"

	"github.com/aurasense/aurasense-server/internal/api/respond"
)

// HealthHandler reports the aggregated service health flag.
type HealthHandler struct {
	isHealthy func() bool
}

func NewHealthHandler(isHealthy func() bool) *HealthHandler {
	return &HealthHandler{isHealthy: isHealthy}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.isHealthy != nil && !h.isHealthy() {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "DOWN"})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}
