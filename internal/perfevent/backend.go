// Package perfevent abstracts the hardware performance-counter facility used
// by hwcountd. A Backend enumerates the counters a CPU supports and hands out
// EventSets, the single counting resource that the counters package rebuilds
// whenever the active membership changes.
package perfevent

import (
	"errors"
	"fmt"
)

// Version is the backend API version hwcountd is built against. Backends
// report their version from Init; any other value is a fatal mismatch.
const Version = 1

var (
	// ErrNoCounterSupport indicates the host exposes no performance counters.
	ErrNoCounterSupport = errors.New("perfevent: hardware does not support performance counters")

	// ErrVersionMismatch indicates the backend reported an unexpected API version.
	ErrVersionMismatch = errors.New("perfevent: backend version mismatch")

	// ErrConflict indicates an event cannot be added because the hardware
	// counter budget is exhausted.
	ErrConflict = errors.New("perfevent: event conflicts with counters already in the set")

	// ErrNotRunning indicates a read or stop on an event set that is not counting.
	ErrNotRunning = errors.New("perfevent: event set is not running")

	// ErrRunning indicates an edit was attempted on a running event set.
	ErrRunning = errors.New("perfevent: event set is running")

	// ErrUnsupported indicates the backend is not available on this platform.
	ErrUnsupported = errors.New("perfevent: backend not supported on this platform")
)

// Code is the opaque identifier a backend uses for one counter type.
type Code uint64

// String returns the code in hexadecimal.
func (c Code) String() string { return fmt.Sprintf("0x%x", uint64(c)) }

// EventInfo describes one counter type reported by a backend.
type EventInfo struct {
	// Symbol is the backend's symbolic name, including the backend prefix.
	Symbol string

	// Code references the counter in EventSet.Add.
	Code Code

	// Count is the number of hardware resources that can count this event.
	// Events with a zero count are unavailable on this host.
	Count int

	ShortDescr string
	LongDescr  string
}

// State describes the lifecycle state of an EventSet.
type State int

const (
	StateStopped State = iota
	StateRunning
)

// Backend is a hardware performance-counter facility.
type Backend interface {
	// Name returns a short backend identifier, e.g. "perf".
	Name() string

	// SymbolPrefix is the fixed prefix of every event symbol.
	SymbolPrefix() string

	// Init initializes the backend and returns its API version.
	Init() (int, error)

	// NumCounters returns the number of physical counters. A negative value
	// means the host has no counter support.
	NumCounters() int

	// Events enumerates every event the backend knows about.
	Events() ([]EventInfo, error)

	// NewEventSet allocates an empty event set bound to the CPU domain.
	NewEventSet() (EventSet, error)
}

// EventSet is the counting resource. Events are added while stopped; values
// are read in add order. An EventSet is not safe for concurrent use.
type EventSet interface {
	// SetMultiplex enables time-sliced multiplexing of more events than
	// physical counters.
	SetMultiplex() error

	// Multiplexed reports whether multiplexing is enabled.
	Multiplexed() bool

	// Add appends an event. Returns ErrConflict when the set is full.
	Add(code Code) error

	// Len returns the number of events in the set.
	Len() int

	// Start begins counting from zero.
	Start() error

	// State returns the current lifecycle state.
	State() State

	// Read copies the running totals into dst, which must have Len elements.
	Read(dst []uint64) error

	// Stop reads the final totals into dst and stops counting.
	Stop(dst []uint64) error

	// Close releases every hardware resource held by the set. Close is
	// idempotent.
	Close() error
}
