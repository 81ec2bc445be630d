package counters

import "errors"

var (
	// ErrUnknownCounter indicates a metric id or counter name not in the catalog.
	ErrUnknownCounter = errors.New("counters: unknown counter")

	// ErrPermissionDenied indicates an unauthenticated or non-root session,
	// or a store to a read-only metric.
	ErrPermissionDenied = errors.New("counters: permission denied")

	// ErrHardware indicates a backend failure: event set create, add, start,
	// stop, or read.
	ErrHardware = errors.New("counters: hardware backend failure")

	// ErrPartialValidation indicates a batch enable or disable contained
	// unmatched names. The matched names were still applied.
	ErrPartialValidation = errors.New("counters: unmatched counter names")

	// ErrValueUnavailable indicates a counter that is not counting yet.
	ErrValueUnavailable = errors.New("counters: no value available")

	// ErrBadValue indicates a stored value that does not parse.
	ErrBadValue = errors.New("counters: bad value")

	// ErrStopped indicates the agent loop is not running.
	ErrStopped = errors.New("counters: agent stopped")
)
