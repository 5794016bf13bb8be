package api

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soochol/postplan/internal/storage"
)

const defaultMaxUpload = 25 << 20

type mediaResponse struct {
	storage.FileInfo
	URL string `json:"url"`
}

func newMediaResponse(info storage.FileInfo) mediaResponse {
	return mediaResponse{FileInfo: info, URL: "/api/media/" + info.ID}
}

// mediaAllowed reports whether a post can carry the content type.
func mediaAllowed(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		http.Error(w, "media storage not configured", http.StatusServiceUnavailable)
		return
	}
	limit := s.maxUpload
	if limit <= 0 {
		limit = defaultMaxUpload
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		http.Error(w, fmt.Sprintf("invalid upload (max %dMB): %v", limit>>20, err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read file", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(body)
	}
	if !mediaAllowed(contentType) {
		http.Error(w, fmt.Sprintf("unsupported media type %q", contentType), http.StatusUnsupportedMediaType)
		return
	}

	info, err := s.media.Save(r.Context(), userID(r), header.Filename, contentType, bytes.NewReader(body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMediaResponse(*info))
}

func (s *Server) listMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		http.Error(w, "media storage not configured", http.StatusServiceUnavailable)
		return
	}
	files, err := s.media.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]mediaResponse, len(files))
	for i, f := range files {
		out[i] = newMediaResponse(f)
	}
	writeJSON(w, http.StatusOK, out)
}

// ownedMedia opens the file and checks it belongs to the caller. Files of
// other users look missing.
func (s *Server) ownedMedia(r *http.Request, id string) (*storage.FileInfo, io.ReadCloser, error) {
	info, rc, err := s.media.Get(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	if info.UserID != userID(r) {
		rc.Close()
		return nil, nil, fmt.Errorf("get %s: %w", id, storage.ErrNotFound)
	}
	return info, rc, nil
}

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		http.Error(w, "media storage not configured", http.StatusServiceUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	info, rc, err := s.ownedMedia(r, id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	escaped := strings.ReplaceAll(info.Filename, `"`, `\"`)
	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, escaped))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("api: media copy interrupted", "id", id, "err", err)
	}
}

func (s *Server) deleteMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		http.Error(w, "media storage not configured", http.StatusServiceUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	_, rc, err := s.ownedMedia(r, id)
	if err != nil {
		writeError(w, err)
		return
	}
	rc.Close()
	if err := s.media.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
