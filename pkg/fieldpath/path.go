package fieldpath

import "strings"

// Separator joins path segments in their string form.
const Separator = "."

// Companion leaf keys located relative to a question path.
const (
	KeyMeasurement      = "measurement"
	KeyRefused          = "refused"
	KeyTerminated       = "terminated"
	KeyInterviewRefused = "interviewRefused"
)

// Path is an immutable, segment-based field address such as
// e4.maxUnassisted.measurement. The zero value is the root.
type Path struct {
	segments []string
}

// New builds a path from raw segments, skipping blanks.
func New(segments ...string) Path {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return Path{segments: out}
}

// Parse splits a dotted path. Empty segments are dropped.
func Parse(raw string) Path {
	return New(strings.Split(raw, Separator)...)
}

// String renders the dotted form.
func (p Path) String() string {
	return strings.Join(p.segments, Separator)
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Len reports the number of segments.
func (p Path) Len() int { return len(p.segments) }

// IsZero reports whether the path is the root.
func (p Path) IsZero() bool { return len(p.segments) == 0 }

// Segment returns the segment at idx, or "" when out of range.
func (p Path) Segment(idx int) string {
	if idx < 0 || idx >= len(p.segments) {
		return ""
	}
	return p.segments[idx]
}

// Section returns the first segment (the section id).
func (p Path) Section() string { return p.Segment(0) }

// Leaf returns the last segment.
func (p Path) Leaf() string { return p.Segment(len(p.segments) - 1) }

// Child appends keys to the path.
func (p Path) Child(keys ...string) Path {
	next := make([]string, 0, len(p.segments)+len(keys))
	next = append(next, p.segments...)
	return New(append(next, keys...)...)
}

// Parent drops the leaf segment.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return p
	}
	return Path{segments: append([]string(nil), p.segments[:len(p.segments)-1]...)}
}

// Sibling replaces the leaf with key, keeping the same parent.
func (p Path) Sibling(key string) Path {
	return p.Parent().Child(key)
}

// Prefix keeps the first n segments.
func (p Path) Prefix(n int) Path {
	if n >= len(p.segments) {
		return p
	}
	if n <= 0 {
		return Path{}
	}
	return Path{segments: append([]string(nil), p.segments[:n]...)}
}

// HasPrefix reports whether prefix is a segment-wise prefix of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for idx, segment := range prefix.segments {
		if p.segments[idx] != segment {
			return false
		}
	}
	return true
}

// Equal compares two paths segment-wise.
func (p Path) Equal(other Path) bool {
	return len(p.segments) == len(other.segments) && p.HasPrefix(other)
}

// Refused is the sibling refusal flag of a measurement leaf.
func (p Path) Refused() Path { return p.Sibling(KeyRefused) }

// Terminated is the sibling early-termination flag of a measurement leaf.
func (p Path) Terminated() Path { return p.Sibling(KeyTerminated) }

// InterviewRefused is the interview-level refusal flag: the first two
// segments of the path followed by interviewRefused.
func (p Path) InterviewRefused() Path { return p.Prefix(2).Child(KeyInterviewRefused) }

// SideRefused is the side-level refusal flag of a palpation path
// (section.side.refused).
func (p Path) SideRefused() Path { return p.Prefix(2).Child(KeyRefused) }

// Slash renders the path with '/' separators, the form glob patterns use.
func (p Path) Slash() string {
	return strings.Join(p.segments, "/")
}

// MarshalText renders the dotted form so paths serialise as JSON strings.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the dotted form.
func (p *Path) UnmarshalText(text []byte) error {
	*p = Parse(string(text))
	return nil
}
