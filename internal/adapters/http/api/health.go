// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"github.com/okian/wordlebot/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports runtime counters of the service.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// HealthHandler serves liveness and runtime statistics.
type HealthHandler struct {
	metrics http.Handler
	stats   StatsProvider
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
		stats:   stats,
		started: time.Now(),
	}
}

// HandleHealth handles GET /healthz with the Prometheus exposition of the
// custom registry. A successful scrape doubles as liveness.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	h.metrics.ServeHTTP(w, r)
}

// HandleStats handles GET /stats. The service counters are returned with
// the handler uptime in whole seconds.
func (h *HealthHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	out := h.stats.GetStats()
	if out == nil {
		out = map[string]interface{}{}
	}
	out["uptimeSeconds"] = int64(time.Since(h.started) / time.Second)
	writeJSON(w, http.StatusOK, out)
}
