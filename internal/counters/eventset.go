package counters

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/plexsphere/hwcountd/internal/catalog"
	"github.com/plexsphere/hwcountd/internal/perfevent"
)

// Reason records why an event set rebuild ran.
type Reason string

const (
	ReasonStartup    Reason = "startup"
	ReasonEnable     Reason = "enable"
	ReasonDisable    Reason = "disable"
	ReasonReset      Reason = "reset"
	ReasonMultiplex  Reason = "multiplex"
	ReasonAutoEnable Reason = "auto-enable"
	ReasonExpiry     Reason = "expiry"
)

// CounterFailure records a counter that could not be added to the event set.
type CounterFailure struct {
	Index int
	Code  string
	Err   error
}

func (f CounterFailure) Error() string {
	return fmt.Sprintf("add %s: %v", f.Code, f.Err)
}

func (f CounterFailure) Unwrap() error { return f.Err }

// RebuildReport summarizes one rebuild.
type RebuildReport struct {
	Reason Reason

	// Requested is the number of counters that were due to be counting.
	Requested int

	// Active is the number of counters added to the new event set.
	Active int

	// Failed lists requested counters that could not be added.
	Failed []CounterFailure

	// StageErrors holds failures of the set as a whole: stop, destroy,
	// create, or start.
	StageErrors []error

	// MultiplexErr is a multiplexing setup failure. The rebuild continues
	// without multiplexing, so it does not count as a failure.
	MultiplexErr error

	// Started reports whether the new event set is counting.
	Started bool
}

// Err returns nil when every requested counter is counting, otherwise an
// error wrapping ErrHardware and every individual failure.
func (r RebuildReport) Err() error {
	if len(r.Failed) == 0 && len(r.StageErrors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed)+len(r.StageErrors))
	errs = append(errs, r.StageErrors...)
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return fmt.Errorf("%w: rebuild (%s): %w", ErrHardware, r.Reason, errors.Join(errs...))
}

// StageErr returns nil unless the set as a whole failed. Counters that did
// not fit are not stage failures.
func (r RebuildReport) StageErr() error {
	if len(r.StageErrors) == 0 {
		return nil
	}
	return fmt.Errorf("%w: rebuild (%s): %w", ErrHardware, r.Reason, errors.Join(r.StageErrors...))
}

// Manager owns the single hardware event set. The backend cannot edit a
// running set, so every membership change tears the set down and builds a
// new one, folding the old totals into each counter's Accumulated value.
// Manager is not safe for concurrent use; the Agent loop serializes access.
type Manager struct {
	backend   perfevent.Backend
	catalog   *catalog.Catalog
	table     *Table
	logger    *slog.Logger
	set       perfevent.EventSet
	values    []uint64
	multiplex bool
}

// NewManager creates a Manager with no event set.
func NewManager(backend perfevent.Backend, cat *catalog.Catalog, table *Table, multiplex bool, logger *slog.Logger) *Manager {
	return &Manager{
		backend:   backend,
		catalog:   cat,
		table:     table,
		logger:    logger,
		multiplex: multiplex,
	}
}

// Multiplex returns the multiplexing flag applied to new event sets.
func (m *Manager) Multiplex() bool { return m.multiplex }

// SetMultiplex changes the flag. It takes effect on the next Rebuild.
func (m *Manager) SetMultiplex(on bool) { m.multiplex = on }

// Running reports whether the event set exists and is counting.
func (m *Manager) Running() bool {
	return m.set != nil && m.set.State() == perfevent.StateRunning
}

// Present reports whether an event set handle exists.
func (m *Manager) Present() bool { return m.set != nil }

// Multiplexed reports whether the current event set has multiplexing enabled.
func (m *Manager) Multiplexed() bool { return m.set != nil && m.set.Multiplexed() }

// Refresh reads the running totals of the current set into the value
// buffer. It is a no-op when the set is not running.
func (m *Manager) Refresh() error {
	if !m.Running() {
		return nil
	}
	if err := m.set.Read(m.values); err != nil {
		return fmt.Errorf("%w: read: %w", ErrHardware, err)
	}
	return nil
}

// Value returns the most recently read total of slot s.
func (m *Manager) Value(s Slot) uint64 {
	if s < 0 || int(s) >= len(m.values) {
		return 0
	}
	return m.values[s]
}

// Rebuild replaces the event set with one counting every counter whose
// activation is live at now. Failures are recorded in the report; the
// rebuild always runs to completion.
func (m *Manager) Rebuild(reason Reason, now time.Time) RebuildReport {
	report := RebuildReport{Reason: reason}

	m.drain(&report)
	m.destroy(&report)

	set, err := m.backend.NewEventSet()
	if err != nil {
		m.logger.Error("event set create failed", "reason", reason, "error", err)
		report.StageErrors = append(report.StageErrors, fmt.Errorf("create: %w", err))
		return report
	}
	m.set = set

	if m.multiplex {
		if err := set.SetMultiplex(); err != nil {
			m.logger.Warn("multiplexing unavailable, continuing without it", "error", err)
			report.MultiplexErr = err
		}
	}

	next := Slot(0)
	for i := 0; i < m.table.Len(); i++ {
		st := m.table.at(i)
		if !st.Activation.ActiveAt(now) {
			continue
		}
		report.Requested++
		def, _ := m.catalog.Counter(i)
		if err := set.Add(def.BackendCode); err != nil {
			m.logger.Warn("unable to add counter", "counter", def.Code, "error", err)
			report.Failed = append(report.Failed, CounterFailure{Index: i, Code: def.Code, Err: err})
			continue
		}
		st.Slot = next
		next++
	}
	report.Active = int(next)
	m.values = make([]uint64, report.Active)

	if report.Active > 0 {
		if err := set.Start(); err != nil {
			m.logger.Error("event set start failed", "reason", reason, "error", err)
			report.StageErrors = append(report.StageErrors, fmt.Errorf("start: %w", err))
		} else {
			report.Started = true
		}
	}

	m.logger.Debug("event set rebuilt",
		"reason", reason,
		"requested", report.Requested,
		"active", report.Active,
		"failed", len(report.Failed),
		"multiplexed", set.Multiplexed(),
	)
	return report
}

// drain stops a running set and folds every slot's total into its counter.
// If the stop fails, the last successful read is folded instead.
func (m *Manager) drain(report *RebuildReport) {
	if m.Running() {
		if err := m.set.Stop(m.values); err != nil {
			m.logger.Error("event set stop failed, keeping last read values", "error", err)
			report.StageErrors = append(report.StageErrors, fmt.Errorf("stop: %w", err))
		}
	}
	for i := 0; i < m.table.Len(); i++ {
		st := m.table.at(i)
		if !st.Counting() {
			continue
		}
		st.Accumulated += m.Value(st.Slot)
		st.Slot = NoSlot
	}
}

func (m *Manager) destroy(report *RebuildReport) {
	if m.set != nil {
		if err := m.set.Close(); err != nil {
			m.logger.Warn("event set destroy failed", "error", err)
			report.StageErrors = append(report.StageErrors, fmt.Errorf("destroy: %w", err))
		}
		m.set = nil
	}
	m.values = nil
}

// Close drains and destroys the event set, leaving every counter without a
// slot. Accumulated values keep the final totals.
func (m *Manager) Close() error {
	var report RebuildReport
	m.drain(&report)
	m.destroy(&report)
	return errors.Join(report.StageErrors...)
}
