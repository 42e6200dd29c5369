package schema

import (
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Issue is one structural mismatch with its dotted field path.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// ValidationError aggregates the issues of one Validate call.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "schema: invalid value"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "schema: " + strings.Join(parts, "; ")
}

func issuesFromError(err error) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Issue
		for _, inner := range multi {
			out = append(out, issuesFromError(inner)...)
		}
		return out
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []Issue{{
			Path:    fieldPathFromPointer(schemaErr.JSONPointer()),
			Message: strings.TrimSpace(schemaErr.Reason),
		}}
	}
	return []Issue{{Message: strings.TrimSpace(err.Error())}}
}

func fieldPathFromPointer(segments []string) string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	return strings.Join(out, ".")
}
