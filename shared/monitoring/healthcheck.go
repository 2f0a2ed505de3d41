package monitoring

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthServer exposes the monitor over HTTP on the dashboard's router.
type HealthServer struct {
	monitor *Monitor
}

func NewHealthServer(monitor *Monitor) *HealthServer {
	return &HealthServer{monitor: monitor}
}

// Routes mounts /health and /status.
func (h *HealthServer) Routes(r chi.Router) {
	r.Get("/health", h.healthHandler)
	r.Get("/status", h.statusHandler)
}

func (h *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.monitor.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", h.monitor.GetStatusSummary())
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "Service unhealthy - %s", h.monitor.GetStatusSummary())
	}
}

func (h *HealthServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s", h.monitor.GetStatusSummary())
}
