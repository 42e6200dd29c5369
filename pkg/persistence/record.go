package persistence

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Record is a persisted examination. Section values are stored at the top
// level of the JSON object next to the reserved keys.
type Record struct {
	ID                uuid.UUID
	ModelVersion      int
	Sections          map[string]any
	CompletedSections []string
	Status            Status
	UpdatedAt         time.Time
}

const (
	keyID                = "id"
	keyCompletedSections = "completedSections"
	keyStatus            = "status"
	keyUpdatedAt         = "updatedAt"
)

var reservedKeys = []string{keyID, VersionKey, keyCompletedSections, keyStatus, keyUpdatedAt}

// NewRecord creates an empty draft record.
func NewRecord(modelVersion int, sections map[string]any) *Record {
	if sections == nil {
		sections = map[string]any{}
	}
	return &Record{
		ID:           uuid.New(),
		ModelVersion: modelVersion,
		Sections:     sections,
		Status:       StatusDraft,
	}
}

// SaveSection replaces the values of one section and moves a draft record
// to in progress.
func (r *Record) SaveSection(sectionID string, values map[string]any) {
	if r.Sections == nil {
		r.Sections = map[string]any{}
	}
	r.Sections[sectionID] = values
	if r.Status == "" || r.Status == StatusDraft {
		r.Status = StatusInProgress
	}
}

// CompleteSection marks a section complete. The record becomes completed
// once every section in all is complete.
func (r *Record) CompleteSection(sectionID string, all []string) {
	if !slices.Contains(r.CompletedSections, sectionID) {
		r.CompletedSections = append(r.CompletedSections, sectionID)
	}
	r.Status = StatusInProgress
	for _, id := range all {
		if !slices.Contains(r.CompletedSections, id) {
			return
		}
	}
	r.Status = StatusCompleted
}

// IsSectionComplete reports whether sectionID was completed.
func (r *Record) IsSectionComplete(sectionID string) bool {
	return slices.Contains(r.CompletedSections, sectionID)
}

// RestrictSections drops completed section ids not in known, keeping order.
func (r *Record) RestrictSections(known func(string) bool) {
	kept := r.CompletedSections[:0]
	for _, id := range r.CompletedSections {
		if known(id) {
			kept = append(kept, id)
		}
	}
	r.CompletedSections = kept
}

// Values returns the section values with the model version stamped, the
// shape migrations operate on.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.Sections)+1)
	for key, value := range r.Sections {
		out[key] = value
	}
	out[VersionKey] = r.ModelVersion
	return out
}

// MarshalJSON flattens sections next to the reserved keys.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Sections)+len(reservedKeys))
	for key, value := range r.Sections {
		out[key] = value
	}
	out[keyID] = r.ID.String()
	out[VersionKey] = r.ModelVersion
	completed := r.CompletedSections
	if completed == nil {
		completed = []string{}
	}
	out[keyCompletedSections] = completed
	out[keyStatus] = r.Status
	if !r.UpdatedAt.IsZero() {
		out[keyUpdatedAt] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits reserved keys from section values. A missing model
// version reads as 1; unknown status values read as draft.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("persistence: decode record: %w", err)
	}
	rec := Record{ModelVersion: VersionOf(raw), Status: StatusDraft, Sections: map[string]any{}}

	if id, ok := raw[keyID].(string); ok && id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("persistence: record id: %w", err)
		}
		rec.ID = parsed
	}
	if list, ok := raw[keyCompletedSections].([]any); ok {
		for _, entry := range list {
			if id, ok := entry.(string); ok && !slices.Contains(rec.CompletedSections, id) {
				rec.CompletedSections = append(rec.CompletedSections, id)
			}
		}
	}
	switch status := Status(fmt.Sprint(raw[keyStatus])); status {
	case StatusDraft, StatusInProgress, StatusCompleted:
		rec.Status = status
	}
	if ts, ok := raw[keyUpdatedAt].(string); ok && ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return fmt.Errorf("persistence: updatedAt: %w", err)
		}
		rec.UpdatedAt = parsed
	}
	for key, value := range raw {
		if !slices.Contains(reservedKeys, key) {
			rec.Sections[key] = value
		}
	}
	*r = rec
	return nil
}
