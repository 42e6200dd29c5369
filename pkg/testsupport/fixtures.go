package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/persistence"
)

// Values returns a Getter over a flat map keyed by dotted path.
func Values(pairs map[string]any) fieldpath.Getter {
	return func(path string) any { return pairs[path] }
}

// Tree returns a Getter that resolves dotted paths inside a nested section
// tree, the shape records and form state use.
func Tree(tree map[string]any) fieldpath.Getter {
	return func(path string) any {
		value, _ := fieldpath.Lookup(tree, fieldpath.Parse(path))
		return value
	}
}

// MustLoadRecord loads a record fixture, failing the test on error.
func MustLoadRecord(t *testing.T, path string) *persistence.Record {
	t.Helper()

	rec, err := LoadRecord(path)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	return rec
}

// LoadRecord reads a JSON record fixture without migrating it, returning an
// error for callers managing setup outside of *testing.T.
func LoadRecord(path string) (*persistence.Record, error) {
	if path == "" {
		return nil, errors.New("testsupport: record path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read record: %w", err)
	}
	var rec persistence.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal record: %w", err)
	}
	return &rec, nil
}

// MustLoadGolden decodes a JSON golden file into a generic value.
func MustLoadGolden(t *testing.T, path string) any {
	t.Helper()

	var out any
	if err := json.Unmarshal(MustReadGolden(t, path), &out); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	return out
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
