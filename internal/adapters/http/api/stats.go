package api

import (
	"maps"
	"net/http"

	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests. The provider stats are returned
// with the metric totals under "metrics".
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	out := maps.Clone(h.statsProvider.GetStats())
	if out == nil {
		out = make(map[string]interface{}, 1)
	}
	totals, err := metrics.Totals()
	if err != nil {
		logger.Get().Warn(r.Context(), "metric totals unavailable", logger.Error(err))
	} else {
		out["metrics"] = totals
	}
	writeJSON(w, http.StatusOK, out)
}
