package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/postplan/internal/export"
	"github.com/soochol/postplan/internal/postplan"
	"github.com/soochol/postplan/internal/recurrence"
)

// createPost creates a draft or scheduled post.
// POST /api/posts
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var p postplan.Post
	if !decodeBody(w, r, &p) {
		return
	}
	if err := s.postSvc.Create(r.Context(), userID(r), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// listPosts returns the user's posts, newest first.
// GET /api/posts
func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.postSvc.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []*postplan.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// exportPosts downloads the user's posts as XLSX. ?timezone= sets the
// zone used for times.
// GET /api/posts/export
func (s *Server) exportPosts(w http.ResponseWriter, r *http.Request) {
	loc, err := recurrence.LoadLocation(r.URL.Query().Get("timezone"))
	if err != nil {
		writeError(w, err)
		return
	}
	posts, err := s.postSvc.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="posts.xlsx"`)
	if err := export.WritePosts(w, posts, loc); err != nil {
		writeError(w, err)
	}
}

// GET /api/posts/{id}
func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.postSvc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PUT /api/posts/{id}
func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var p postplan.Post
	if !decodeBody(w, r, &p) {
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := s.postSvc.Update(r.Context(), userID(r), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DELETE /api/posts/{id}
func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.postSvc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
