package form

import (
	"sort"
	"sync"

	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/validation"
)

// Listener is notified after a value changes. Restore notifies once with an
// empty path.
type Listener func(path string, value any)

// State owns the form values, keyed by dotted path, and the field errors
// currently shown. It is the only writer of form values.
type State struct {
	mu        sync.RWMutex
	values    map[string]any
	errors    map[string]validation.FieldError
	listeners map[int]Listener
	nextID    int
}

// NewState seeds a state from a nested value tree.
func NewState(tree map[string]any) *State {
	return &State{
		values:    fieldpath.Flatten(tree),
		errors:    make(map[string]validation.FieldError),
		listeners: make(map[int]Listener),
	}
}

// Get returns the value at path, or nil.
func (s *State) Get(path string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[path]
}

// Getter exposes Get to the validators.
func (s *State) Getter() fieldpath.Getter { return s.Get }

// Set stores value at path and notifies listeners.
func (s *State) Set(path string, value any) {
	s.mu.Lock()
	s.values[path] = value
	listeners := s.snapshotListeners()
	s.mu.Unlock()
	for _, l := range listeners {
		l(path, value)
	}
}

// Clear resets paths to nil.
func (s *State) Clear(paths ...string) {
	for _, path := range paths {
		s.Set(path, nil)
	}
}

// Subscribe registers l and returns a function removing it.
func (s *State) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *State) snapshotListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

// Snapshot returns the values as a nested tree.
func (s *State) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fieldpath.Expand(s.values)
}

// Section returns the nested values of one section.
func (s *State) Section(id string) map[string]any {
	tree, _ := s.Snapshot()[id].(map[string]any)
	if tree == nil {
		return map[string]any{}
	}
	return tree
}

// Restore replaces every value from a nested tree and clears errors.
func (s *State) Restore(tree map[string]any) {
	s.mu.Lock()
	s.values = fieldpath.Flatten(tree)
	s.errors = make(map[string]validation.FieldError)
	listeners := s.snapshotListeners()
	s.mu.Unlock()
	for _, l := range listeners {
		l("", nil)
	}
}

// SetErrors attaches errors to their paths.
func (s *State) SetErrors(errs ...validation.FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fe := range errs {
		s.errors[fe.Path] = fe
	}
}

// ClearErrors removes the errors of paths.
func (s *State) ClearErrors(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, path := range paths {
		delete(s.errors, path)
	}
}

// Error returns the error attached to path.
func (s *State) Error(path string) (validation.FieldError, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fe, ok := s.errors[path]
	return fe, ok
}

// Errors returns every attached error sorted by path.
func (s *State) Errors() []validation.FieldError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]validation.FieldError, 0, len(s.errors))
	for _, fe := range s.errors {
		out = append(out, fe)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
