package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/postplan/internal/postplan"
	"github.com/soochol/postplan/internal/recurrence"
)

// scheduleResponse adds the human readable recurrence to a schedule.
type scheduleResponse struct {
	*postplan.Schedule
	Description string `json:"description"`
}

func toScheduleResponse(s *postplan.Schedule) scheduleResponse {
	return scheduleResponse{Schedule: s, Description: s.Description()}
}

// createSchedule creates a recurring post schedule.
// POST /api/schedules
func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var sched postplan.Schedule
	if !decodeBody(w, r, &sched) {
		return
	}
	if err := s.scheduleSvc.Create(r.Context(), userID(r), &sched); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleResponse(&sched))
}

// listSchedules returns the user's schedules.
// GET /api/schedules
func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.scheduleSvc.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]scheduleResponse, len(schedules))
	for i, sched := range schedules {
		out[i] = toScheduleResponse(sched)
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/schedules/{id}
func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := s.scheduleSvc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(sched))
}

// PUT /api/schedules/{id}
func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	var sched postplan.Schedule
	if !decodeBody(w, r, &sched) {
		return
	}
	sched.ID = chi.URLParam(r, "id")
	if err := s.scheduleSvc.Update(r.Context(), userID(r), &sched); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(&sched))
}

// DELETE /api/schedules/{id}
func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduleSvc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/schedules/{id}/pause
func (s *Server) pauseSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := s.scheduleSvc.Pause(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(sched))
}

// POST /api/schedules/{id}/resume
func (s *Server) resumeSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := s.scheduleSvc.Resume(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(sched))
}

type previewRequest struct {
	Recurrence recurrence.Config `json:"recurrence"`
	From       time.Time         `json:"from"`
	Count      int               `json:"count"`
}

// previewSchedule describes a recurrence and lists its next occurrences
// without storing anything.
// POST /api/schedules/preview
func (s *Server) previewSchedule(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := s.scheduleSvc.Preview(req.Recurrence, req.From, req.Count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
