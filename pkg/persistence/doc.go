// Package persistence loads and saves examination records. Loading migrates
// older model versions forward, shape-checks the result against the model
// schema and falls back to defaults when the data cannot be repaired.
// Saving goes to a backend collaborator and clears the local draft.
package persistence
