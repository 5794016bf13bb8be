package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soochol/postplan/internal/postplan"
)

const metaExt = ".meta.json"

// LocalStorage stores files on the local filesystem. Each file has a JSON
// sidecar holding its FileInfo so the index survives restarts.
type LocalStorage struct {
	baseDir string
	mu      sync.RWMutex
	files   map[string]*FileInfo
}

// NewLocalStorage creates baseDir if needed and loads the sidecars already
// in it.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	s := &LocalStorage{
		baseDir: baseDir,
		files:   make(map[string]*FileInfo),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStorage) load() error {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, "*"+metaExt))
	if err != nil {
		return fmt.Errorf("scan storage dir: %w", err)
	}
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return fmt.Errorf("read %s: %w", m, err)
		}
		var info FileInfo
		if err := json.Unmarshal(data, &info); err != nil {
			slog.Warn("storage: skipping unreadable sidecar", "path", m, "err", err)
			continue
		}
		info.Path = strings.TrimSuffix(filepath.Base(m), metaExt)
		s.files[info.ID] = &info
	}
	return nil
}

func (s *LocalStorage) Save(_ context.Context, userID, filename, contentType string, reader io.Reader) (*FileInfo, error) {
	id := postplan.GenerateID("media")
	storedName := id + strings.ToLower(filepath.Ext(filename))
	fullPath := filepath.Join(s.baseDir, storedName)

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, reader)
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("write file: %w", err)
	}

	info := &FileInfo{
		ID:          id,
		UserID:      userID,
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        n,
		Path:        storedName,
		CreatedAt:   time.Now().UTC(),
	}
	meta, _ := json.Marshal(info)
	if err := os.WriteFile(fullPath+metaExt, meta, 0644); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	s.mu.Lock()
	s.files[id] = info
	s.mu.Unlock()

	return info, nil
}

func (s *LocalStorage) Get(_ context.Context, id string) (*FileInfo, io.ReadCloser, error) {
	s.mu.RLock()
	info, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}

	f, err := os.Open(filepath.Join(s.baseDir, info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	cp := *info
	return &cp, f, nil
}

func (s *LocalStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	info, ok := s.files[id]
	if ok {
		delete(s.files, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}

	fullPath := filepath.Join(s.baseDir, info.Path)
	if err := os.Remove(fullPath + metaExt); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove metadata: %w", err)
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *LocalStorage) List(_ context.Context, userID string) ([]FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]FileInfo, 0, len(s.files))
	for _, info := range s.files {
		if info.UserID == userID {
			result = append(result, *info)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}
