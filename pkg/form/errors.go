package form

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-dctmd/pkg/instance"
	"github.com/goliatone/go-dctmd/pkg/validation"
)

// CodeServer tags field errors mapped from a backend payload.
const CodeServer = "server"

// ErrorMapping splits a backend error payload into field-level messages
// keyed by instance path and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrorPayload maps payload keys (dotted paths, JSON pointers, bracket
// indices, optionally wrapped in body/data/payload) onto the longest known
// instance path or section group. Keys that match nothing become form-level
// messages so nothing is lost.
func MapErrorPayload(ix *instance.Index, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := knownPaths(ix)
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		messages := normalizeMessages(payload[raw])
		if len(messages) == 0 {
			continue
		}
		mapped, formLevel := mapErrorPath(raw, known)
		if formLevel {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[mapped] = append(mapping.Fields[mapped], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// FieldErrors flattens the field-level messages into errors, joining
// multiple messages for one path.
func (m ErrorMapping) FieldErrors() []validation.FieldError {
	paths := make([]string, 0, len(m.Fields))
	for path := range m.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	out := make([]validation.FieldError, 0, len(paths))
	for _, path := range paths {
		out = append(out, validation.FieldError{
			Path:    path,
			Code:    CodeServer,
			Message: strings.Join(m.Fields[path], "; "),
		})
	}
	return out
}

// ApplyErrorPayload maps a backend payload and attaches the field errors to
// the state. Form-level messages are returned.
func (c *Controller) ApplyErrorPayload(payload map[string][]string) []string {
	mapping := MapErrorPayload(c.catalog.Index(), payload)
	c.state.SetErrors(mapping.FieldErrors()...)
	return mapping.Form
}

func knownPaths(ix *instance.Index) map[string]struct{} {
	out := make(map[string]struct{})
	for _, inst := range ix.All() {
		path := inst.Path
		for !path.IsZero() {
			key := path.String()
			if _, seen := out[key]; seen {
				break
			}
			out[key] = struct{}{}
			path = path.Parent()
		}
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}
	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	best := ""
	for _, variant := range segmentVariants(segments) {
		if path := longestMatchingPath(variant, known); len(path) > len(best) {
			best = path
		}
	}
	if best == "" {
		return "", true
	}
	return best, false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '/' })

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"sections":   {},
}

func segmentVariants(segments []string) [][]string {
	unwrapped := segments
	for len(unwrapped) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(unwrapped[0])]; !ok {
			break
		}
		unwrapped = unwrapped[1:]
	}
	return [][]string{segments, unwrapped, stripNumeric(segments), stripNumeric(unwrapped)}
}

func stripNumeric(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestMatchingPath(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(key) {
	case "", ".", "/", "#", "$", "form", "record", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}
