// Package storage persists uploaded media attached to posts.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("file not found")

// FileInfo describes a stored file.
type FileInfo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Path        string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage is the interface for file persistence backends.
type Storage interface {
	// Save stores a file owned by userID and returns its metadata.
	Save(ctx context.Context, userID, filename, contentType string, reader io.Reader) (*FileInfo, error)
	// Get retrieves a file by ID. The caller closes the reader.
	Get(ctx context.Context, id string) (*FileInfo, io.ReadCloser, error)
	// Delete removes a file by ID.
	Delete(ctx context.Context, id string) error
	// List returns the files owned by userID, newest first.
	List(ctx context.Context, userID string) ([]FileInfo, error)
}
