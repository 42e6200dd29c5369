package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-dctmd/pkg/draft"
)

// ErrNotFound is returned by backends for unknown record ids.
var ErrNotFound = errors.New("persistence: record not found")

// RejectionError is returned by backends that refuse a record with
// messages keyed by field path or JSON pointer. Keys that name no field
// carry form-level messages.
type RejectionError struct {
	Fields map[string][]string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("persistence: record rejected (%d keys)", len(e.Fields))
}

// Backend is the remote record store.
type Backend interface {
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	Put(ctx context.Context, rec *Record) error
}

// Source tells where an opened record came from.
type Source string

const (
	SourceBackend Source = "backend"
	SourceDraft   Source = "draft"
	SourceNew     Source = "new"
)

// Repository combines the backend with local drafts. The backend copy is
// authoritative unless the draft is strictly newer.
type Repository struct {
	backend Backend
	drafts  draft.Store
	loader  *Loader
	now     func() time.Time
	logger  *slog.Logger
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithClock overrides the save timestamp source.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRepositoryLogger sets the repository logger.
func WithRepositoryLogger(logger *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRepository wires a backend, a draft store and a loader.
func NewRepository(backend Backend, drafts draft.Store, loader *Loader, opts ...RepositoryOption) *Repository {
	r := &Repository{
		backend: backend,
		drafts:  drafts,
		loader:  loader,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Create starts a new draft record filled with defaults.
func (r *Repository) Create() *Record {
	return NewRecord(r.loader.Migrator().Current(), r.loader.Defaults())
}

// Open returns the authoritative copy of a record, loaded through the
// migration and schema path.
func (r *Repository) Open(ctx context.Context, id uuid.UUID) (*Record, Source, error) {
	rec, err := r.backend.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("persistence: open %s: %w", id, err)
	}

	d, derr := r.drafts.Load(ctx, id.String())
	if derr != nil && !errors.Is(derr, draft.ErrNotFound) {
		r.logger.Warn("Ignoring unreadable draft", slog.String("record", id.String()), slog.String("error", derr.Error()))
	}
	hasDraft := derr == nil

	switch {
	case rec == nil && !hasDraft:
		return nil, "", fmt.Errorf("persistence: open %s: %w", id, ErrNotFound)
	case hasDraft && (rec == nil || d.NewerThan(rec.UpdatedAt)):
		if rec == nil {
			rec = &Record{ID: id, Status: StatusDraft}
		}
		rec.Sections = d.Values
		rec.ModelVersion = d.ModelVersion
		r.loader.LoadRecord(rec)
		return rec, SourceDraft, nil
	default:
		r.loader.LoadRecord(rec)
		return rec, SourceBackend, nil
	}
}

// Save stamps and stores rec in the backend. On success the local draft is
// removed so the two stores never disagree.
func (r *Repository) Save(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.UpdatedAt = r.now()
	if rec.ModelVersion == 0 {
		rec.ModelVersion = r.loader.Migrator().Current()
	}
	if err := r.backend.Put(ctx, rec); err != nil {
		return fmt.Errorf("persistence: save %s: %w", rec.ID, err)
	}
	if err := r.drafts.Delete(ctx, rec.ID.String()); err != nil {
		r.logger.Warn("Failed to clear draft after save", slog.String("record", rec.ID.String()), slog.String("error", err.Error()))
	}
	return nil
}

// MemoryBackend is an in-process Backend storing JSON-encoded records.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[uuid.UUID][]byte)}
}

func (b *MemoryBackend) Get(_ context.Context, id uuid.UUID) (*Record, error) {
	b.mu.RLock()
	raw, ok := b.records[id]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var rec Record
	if err := rec.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (b *MemoryBackend) Put(_ context.Context, rec *Record) error {
	raw, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("persistence: encode record: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[rec.ID] = raw
	return nil
}
