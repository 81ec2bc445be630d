package counters

import (
	"fmt"
	"time"
)

// ActivationKind is the activation mode of a counter.
type ActivationKind int

const (
	Disabled ActivationKind = iota
	ActiveUntil
	ActiveForever
)

func (k ActivationKind) String() string {
	switch k {
	case Disabled:
		return "disabled"
	case ActiveUntil:
		return "until"
	case ActiveForever:
		return "forever"
	}
	return fmt.Sprintf("ActivationKind(%d)", int(k))
}

// Activation is the requested activation of a counter.
type Activation struct {
	Kind ActivationKind
	// Until is the expiry time. Only meaningful for ActiveUntil.
	Until time.Time
}

// Forever returns a never-expiring activation.
func Forever() Activation { return Activation{Kind: ActiveForever} }

// Until returns an activation that lapses after t.
func Until(t time.Time) Activation { return Activation{Kind: ActiveUntil, Until: t} }

// ActiveAt reports whether the counter is requested at now. An ActiveUntil
// counter is still requested at exactly its expiry time.
func (a Activation) ActiveAt(now time.Time) bool {
	switch a.Kind {
	case ActiveForever:
		return true
	case ActiveUntil:
		return !a.Until.Before(now)
	}
	return false
}

// Expired reports whether a finite activation has lapsed at now.
func (a Activation) Expired(now time.Time) bool {
	return a.Kind == ActiveUntil && a.Until.Before(now)
}

// Slot is an index into the event set value buffer.
type Slot int

// NoSlot marks a counter that is not counting in hardware.
const NoSlot Slot = -1

// CounterState is the mutable record of one catalog counter.
type CounterState struct {
	Activation Activation

	// Slot is the counter's position in the running event set, or NoSlot.
	Slot Slot

	// Accumulated is the total folded in from previous event sets.
	Accumulated uint64
}

// Counting reports whether the counter holds a slot.
func (s CounterState) Counting() bool { return s.Slot != NoSlot }

// Table holds one CounterState per catalog counter, indexed by the
// counter's dense identity. The table never grows or shrinks after creation.
type Table struct {
	states []CounterState
}

// NewTable creates a table of n disabled counters.
func NewTable(n int) *Table {
	t := &Table{states: make([]CounterState, n)}
	for i := range t.states {
		t.states[i].Slot = NoSlot
	}
	return t
}

// Len returns the number of counters.
func (t *Table) Len() int { return len(t.states) }

// Get returns a copy of counter i.
func (t *Table) Get(i int) CounterState { return t.states[i] }

// at returns the record of counter i for in-place mutation.
func (t *Table) at(i int) *CounterState { return &t.states[i] }

// Snapshot returns a copy of every record.
func (t *Table) Snapshot() []CounterState {
	out := make([]CounterState, len(t.states))
	copy(out, t.states)
	return out
}

// Counting returns the number of counters holding a slot.
func (t *Table) Counting() int {
	n := 0
	for _, s := range t.states {
		if s.Counting() {
			n++
		}
	}
	return n
}
