// Package fieldpath provides the typed dot-path representation shared by the
// model projections, the validation engine and persistence. Paths are built
// from segments rather than string concatenation, and the companion flags the
// engine relies on (refused, terminated, interviewRefused) are exposed as
// named accessors so path-shape drift is caught in one place.
package fieldpath
