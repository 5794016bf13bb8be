package api

import (
	"net/http"
	"time"

	"github.com/soochol/postplan/internal/bulk"
)

type calendarRequest struct {
	Year     int          `json:"year"`
	Month    int          `json:"month"`
	Timezone string       `json:"timezone"`
	Bulk     *bulk.Result `json:"bulk,omitempty"`
}

// monthCalendar projects the user's posts and an optional bulk preview
// onto a month grid.
// POST /api/calendar
func (s *Server) monthCalendar(w http.ResponseWriter, r *http.Request) {
	var req calendarRequest
	if !decodeBody(w, r, &req) {
		return
	}
	days, err := s.calendarSvc.Month(r.Context(), userID(r), req.Year, time.Month(req.Month), req.Timezone, req.Bulk)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
