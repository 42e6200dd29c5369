package tui

import "errors"

var (
	// ErrAborted signals the examiner aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoDriver is returned when a session is built without a driver.
	ErrNoDriver = errors.New("tui: prompt driver required")
)
