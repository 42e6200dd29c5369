// Package schema compiles a section model into a structural OpenAPI schema
// (github.com/getkin/kin-openapi) used to coerce and shape-check persisted
// JSON before it enters the live form. It does not apply business rules:
// requiredness, ranges and conditional requirements belong to the
// validation package.
package schema
