package api

import (
	"net/http"

	"github.com/soochol/postplan/internal/metrics"
)

// getMetrics returns a summary of every recorded series.
// GET /api/metrics
func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeJSON(w, http.StatusOK, []metrics.Summary{})
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
