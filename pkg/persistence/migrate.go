package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// VersionKey is the record key holding the model version.
const VersionKey = "_modelVersion"

// ErrVersionMismatch reports a model version that is not one past the
// number of migrations.
var ErrVersionMismatch = errors.New("persistence: model version does not match migrations")

// Migration upgrades data by exactly one model version. Migrations must not
// mutate their input.
type Migration func(map[string]any) map[string]any

// Migrator applies migrations from a stored version up to the current one.
type Migrator struct {
	current    int
	migrations []Migration
	logger     *slog.Logger
}

// NewMigrator checks that current equals len(migrations)+1.
func NewMigrator(current int, migrations []Migration, logger *slog.Logger) (*Migrator, error) {
	if current != len(migrations)+1 {
		return nil, fmt.Errorf("%w: version %d with %d migrations", ErrVersionMismatch, current, len(migrations))
	}
	for idx, m := range migrations {
		if m == nil {
			return nil, fmt.Errorf("persistence: migration %d is nil", idx+1)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{current: current, migrations: append([]Migration(nil), migrations...), logger: logger}, nil
}

// MustNewMigrator is NewMigrator that panics. Use it at startup.
func MustNewMigrator(current int, migrations []Migration, logger *slog.Logger) *Migrator {
	m, err := NewMigrator(current, migrations, logger)
	if err != nil {
		panic(err)
	}
	return m
}

// Current returns the current model version.
func (m *Migrator) Current() int { return m.current }

// Migrate brings data from version to the current version. Data already at
// the current version is returned as is; data from a newer version is
// passed through unchanged with a warning.
func (m *Migrator) Migrate(data map[string]any, version int) map[string]any {
	if version < 1 {
		version = 1
	}
	if version > m.current {
		m.logger.Warn("Record model version is newer than supported, passing through",
			slog.Int("version", version), slog.Int("current", m.current))
		return data
	}
	for v := version; v < m.current; v++ {
		data = m.migrations[v-1](data)
		m.logger.Debug("Migrated record", slog.Int("from", v), slog.Int("to", v+1))
	}
	return data
}

// VersionOf reads the model version stored in data. A missing or malformed
// version means version 1.
func VersionOf(data map[string]any) int {
	switch v := data[VersionKey].(type) {
	case int:
		if v >= 1 {
			return v
		}
	case int64:
		if v >= 1 {
			return int(v)
		}
	case float64:
		if v >= 1 && v == math.Trunc(v) {
			return int(v)
		}
	}
	return 1
}
