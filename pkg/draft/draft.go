// Package draft keeps local, unsaved copies of an examination between
// backend saves, and debounces writes to them.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when no draft exists for a record.
var ErrNotFound = errors.New("draft: not found")

// Draft is a local snapshot of the form values of one record.
type Draft struct {
	RecordID     string         `json:"recordId"`
	ModelVersion int            `json:"_modelVersion"`
	Values       map[string]any `json:"values"`
	SavedAt      time.Time      `json:"savedAt"`
}

// Store persists drafts keyed by record id.
type Store interface {
	Load(ctx context.Context, recordID string) (Draft, error)
	Save(ctx context.Context, d Draft) error
	Delete(ctx context.Context, recordID string) error
}

// NewerThan reports whether the draft is strictly newer than t and should
// win over the backend copy.
func (d Draft) NewerThan(t time.Time) bool {
	return d.SavedAt.After(t)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Load(_ context.Context, recordID string) (Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[recordID]
	if !ok {
		return Draft{}, fmt.Errorf("%w: %s", ErrNotFound, recordID)
	}
	return d, nil
}

func (s *MemoryStore) Save(_ context.Context, d Draft) error {
	if d.RecordID == "" {
		return errors.New("draft: record id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.RecordID] = d
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, recordID)
	return nil
}

// FileStore keeps one JSON file per record in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("draft: directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("draft: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(recordID string) (string, error) {
	if recordID == "" || strings.ContainsAny(recordID, `/\`) || recordID == "." || recordID == ".." {
		return "", fmt.Errorf("draft: invalid record id %q", recordID)
	}
	return filepath.Join(s.dir, recordID+".json"), nil
}

func (s *FileStore) Load(_ context.Context, recordID string) (Draft, error) {
	path, err := s.path(recordID)
	if err != nil {
		return Draft{}, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Draft{}, fmt.Errorf("%w: %s", ErrNotFound, recordID)
	}
	if err != nil {
		return Draft{}, fmt.Errorf("draft: read: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("draft: decode %s: %w", recordID, err)
	}
	return d, nil
}

// Save writes to a temp file and renames it over the previous draft.
func (s *FileStore) Save(_ context.Context, d Draft) error {
	path, err := s.path(d.RecordID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("draft: encode: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("draft: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("draft: write: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, recordID string) error {
	path, err := s.path(recordID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("draft: delete: %w", err)
	}
	return nil
}
