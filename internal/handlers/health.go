package handlers

import (
	"net/http"
	"time"
)

// Counter reports how many incidents are being served.
type Counter interface {
	Count() int
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	counter Counter
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(counter Counter) *HealthHandler {
	return &HealthHandler{counter: counter, now: time.Now}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Number of incidents held in memory
	Incidents int `json:"incidents"`
}

// Routes returns the health route table.
func (h *HealthHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/health", Handle: h.Check},
	}
}

// Check handles GET /health.
func (h *HealthHandler) Check(r *http.Request) Result {
	return OK(HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Incidents: h.counter.Count(),
	})
}
