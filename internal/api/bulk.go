package api

import (
	"net/http"

	"github.com/soochol/postplan/internal/bulk"
	"github.com/soochol/postplan/internal/export"
	"github.com/soochol/postplan/internal/postplan"
)

// bulkCommitRequest is a bulk config plus the post template every
// scheduled date is created from.
type bulkCommitRequest struct {
	bulk.Config
	Post postplan.Post `json:"post"`
}

type bulkCommitResponse struct {
	bulk.Result
	Posts []*postplan.Post `json:"posts"`
}

// previewBulk classifies the candidates of a bulk config.
// POST /api/bulk/preview
func (s *Server) previewBulk(w http.ResponseWriter, r *http.Request) {
	var cfg bulk.Config
	if !decodeBody(w, r, &cfg) {
		return
	}
	res, err := s.bulkSvc.Preview(r.Context(), userID(r), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// commitBulk creates a scheduled post for every scheduled date.
// POST /api/bulk
func (s *Server) commitBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkCommitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, posts, err := s.bulkSvc.Commit(r.Context(), userID(r), req.Config, req.Post)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bulkCommitResponse{Result: res, Posts: posts})
}

// exportBulk downloads a bulk preview as XLSX.
// POST /api/bulk/export
func (s *Server) exportBulk(w http.ResponseWriter, r *http.Request) {
	var cfg bulk.Config
	if !decodeBody(w, r, &cfg) {
		return
	}
	res, err := s.bulkSvc.Preview(r.Context(), userID(r), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	loc, err := cfg.Location()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bulk-preview.xlsx"`)
	if err := export.WriteBulk(w, res, loc); err != nil {
		writeError(w, err)
	}
}
