// Package form orchestrates a live examination form: the value State, the
// Controller that validates steps against the compiled catalog, the per
// section step Flow, and the RefusalMachine cascading a measurement refusal
// to its paired interview.
package form
