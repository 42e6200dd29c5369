package draft

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay is the autosave debounce when none is configured.
const DefaultDelay = 2 * time.Second

// SnapshotFunc returns the current form values. It is called at flush time,
// so a flush always stores the latest values.
type SnapshotFunc func() map[string]any

// Autosaver debounces draft writes: every Touch restarts the timer and the
// save runs once the form has been idle for the delay.
type Autosaver struct {
	store        Store
	recordID     string
	modelVersion int
	snapshot     SnapshotFunc
	delay        time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	held    bool
	closed  bool
}

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*Autosaver)

// WithDelay sets the debounce delay.
func WithDelay(delay time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		if delay > 0 {
			a.delay = delay
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) AutosaveOption {
	return func(a *Autosaver) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger used for failed saves.
func WithLogger(logger *slog.Logger) AutosaveOption {
	return func(a *Autosaver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAutosaver returns an idle Autosaver for one record.
func NewAutosaver(store Store, recordID string, modelVersion int, snapshot SnapshotFunc, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		store:        store,
		recordID:     recordID,
		modelVersion: modelVersion,
		snapshot:     snapshot,
		delay:        DefaultDelay,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Touch records a form change and restarts the debounce timer.
func (a *Autosaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = true
	if a.held {
		return
	}
	a.schedule()
}

func (a *Autosaver) schedule() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.flushIdle)
}

// flushIdle runs when the debounce expires. A timer that fired just before
// Hold or Close finds the flag set and does nothing.
func (a *Autosaver) flushIdle() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.held || a.closed {
		return
	}
	if err := a.flushLocked(context.Background()); err != nil {
		a.logger.Warn("Autosave failed", slog.String("record", a.recordID), slog.String("error", err.Error()))
	}
}

// Hold stops the debounce timer until Resume or Discard. Changes made while
// held stay pending but are not written.
func (a *Autosaver) Hold() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.held = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Resume restarts the debounce for a change left pending by Hold.
func (a *Autosaver) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.held = false
	if a.pending && !a.closed {
		a.schedule()
	}
}

// Pending reports whether a change is waiting to be saved.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Flush cancels the timer and saves immediately if a change is pending.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flushLocked(ctx)
}

func (a *Autosaver) flushLocked(ctx context.Context) error {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if !a.pending {
		return nil
	}
	d := Draft{
		RecordID:     a.recordID,
		ModelVersion: a.modelVersion,
		Values:       a.snapshot(),
		SavedAt:      a.now(),
	}
	if err := a.store.Save(ctx, d); err != nil {
		return err
	}
	a.pending = false
	return nil
}

// Discard drops any pending change without saving and releases a Hold,
// used once the backend has accepted the record.
func (a *Autosaver) Discard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = false
	a.held = false
}

// Close flushes the last change and stops accepting new ones.
func (a *Autosaver) Close(ctx context.Context) error {
	err := a.Flush(ctx)
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return err
}
