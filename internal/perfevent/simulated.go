package perfevent

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultSimulatedRate is the default number of simulated events per second
// per counter.
const DefaultSimulatedRate = 1000

// SimulatedConfig configures a Simulated backend.
type SimulatedConfig struct {
	// PhysicalCounters is the counter budget without multiplexing.
	// Default: 4
	PhysicalCounters int

	// Events is the event vocabulary. Default: GenericEvents().
	Events []EventInfo

	// Rate is the number of events counted per second per counter.
	// Default: DefaultSimulatedRate
	Rate uint64

	// Version is the API version reported by Init. Default: Version.
	Version int

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *SimulatedConfig) ApplyDefaults() {
	if c.PhysicalCounters == 0 {
		c.PhysicalCounters = DefaultPhysicalCounters
	}
	if c.Events == nil {
		c.Events = GenericEvents()
	}
	if c.Rate == 0 {
		c.Rate = DefaultSimulatedRate
	}
	if c.Version == 0 {
		c.Version = Version
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Simulated is an in-memory Backend that counts at a fixed rate against a
// clock. It enforces the physical counter budget like real hardware and lets
// callers inject failures into every event set operation.
type Simulated struct {
	cfg SimulatedConfig

	mu            sync.Mutex
	failInit      error
	failCreate    error
	failMultiplex error
	failStart     error
	failStop      error
	failRead      error
	failAdd       map[Code]error
	live          int
	created       int
}

// NewSimulated creates a Simulated backend. Config defaults are applied
// automatically.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	cfg.ApplyDefaults()
	return &Simulated{cfg: cfg, failAdd: make(map[Code]error)}
}

// SimulatedOp names an operation that can be made to fail.
type SimulatedOp int

const (
	OpInit SimulatedOp = iota
	OpCreate
	OpMultiplex
	OpStart
	OpStop
	OpRead
)

// FailOn makes op return err until cleared with a nil err.
func (s *Simulated) FailOn(op SimulatedOp, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch op {
	case OpInit:
		s.failInit = err
	case OpCreate:
		s.failCreate = err
	case OpMultiplex:
		s.failMultiplex = err
	case OpStart:
		s.failStart = err
	case OpStop:
		s.failStop = err
	case OpRead:
		s.failRead = err
	}
}

// FailAdd makes Add of code return err until cleared with a nil err.
func (s *Simulated) FailAdd(code Code, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failAdd, code)
		return
	}
	s.failAdd[code] = err
}

// LiveSets returns the number of event sets created and not yet closed.
func (s *Simulated) LiveSets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// CreatedSets returns the number of event sets created over the backend's life.
func (s *Simulated) CreatedSets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

func (s *Simulated) Name() string         { return "simulated" }
func (s *Simulated) SymbolPrefix() string { return SymbolPrefix }

func (s *Simulated) Init() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInit != nil {
		return 0, s.failInit
	}
	return s.cfg.Version, nil
}

func (s *Simulated) NumCounters() int { return s.cfg.PhysicalCounters }

func (s *Simulated) Events() ([]EventInfo, error) {
	out := make([]EventInfo, len(s.cfg.Events))
	copy(out, s.cfg.Events)
	return out, nil
}

func (s *Simulated) NewEventSet() (EventSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return nil, s.failCreate
	}
	s.live++
	s.created++
	return &simulatedSet{backend: s}, nil
}

func (s *Simulated) injected(op SimulatedOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch op {
	case OpMultiplex:
		return s.failMultiplex
	case OpStart:
		return s.failStart
	case OpStop:
		return s.failStop
	case OpRead:
		return s.failRead
	}
	return nil
}

func (s *Simulated) addError(code Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failAdd[code]
}

func (s *Simulated) known(code Code) bool {
	for _, ev := range s.cfg.Events {
		if ev.Code == code && ev.Count > 0 {
			return true
		}
	}
	return false
}

type simulatedSet struct {
	backend   *Simulated
	codes     []Code
	multiplex bool
	running   bool
	closed    bool
	started   time.Time
}

func (e *simulatedSet) SetMultiplex() error {
	if e.running {
		return ErrRunning
	}
	if err := e.backend.injected(OpMultiplex); err != nil {
		return err
	}
	e.multiplex = true
	return nil
}

func (e *simulatedSet) Multiplexed() bool { return e.multiplex }

func (e *simulatedSet) Add(code Code) error {
	if e.closed {
		return errors.New("perfevent: simulated: event set closed")
	}
	if e.running {
		return ErrRunning
	}
	if err := e.backend.addError(code); err != nil {
		return err
	}
	if !e.backend.known(code) {
		return fmt.Errorf("perfevent: simulated: unknown event %s", code)
	}
	if !e.multiplex && len(e.codes) >= e.backend.cfg.PhysicalCounters {
		return ErrConflict
	}
	e.codes = append(e.codes, code)
	return nil
}

func (e *simulatedSet) Len() int { return len(e.codes) }

func (e *simulatedSet) Start() error {
	if e.running {
		return ErrRunning
	}
	if err := e.backend.injected(OpStart); err != nil {
		return err
	}
	e.running = true
	e.started = e.backend.cfg.Now()
	return nil
}

func (e *simulatedSet) State() State {
	if e.running {
		return StateRunning
	}
	return StateStopped
}

func (e *simulatedSet) Read(dst []uint64) error {
	if !e.running {
		return ErrNotRunning
	}
	if err := e.backend.injected(OpRead); err != nil {
		return err
	}
	e.fill(dst)
	return nil
}

func (e *simulatedSet) Stop(dst []uint64) error {
	if !e.running {
		return ErrNotRunning
	}
	if err := e.backend.injected(OpStop); err != nil {
		return err
	}
	e.fill(dst)
	e.running = false
	return nil
}

// fill writes rate * elapsed for every counter. Multiplexed counters share
// the physical budget, so each one counts for its share of the elapsed time
// and is scaled back up, which leaves the estimate unchanged.
func (e *simulatedSet) fill(dst []uint64) {
	elapsed := e.backend.cfg.Now().Sub(e.started)
	if elapsed < 0 {
		elapsed = 0
	}
	v := uint64(elapsed) * e.backend.cfg.Rate / uint64(time.Second)
	for i := range e.codes {
		if i < len(dst) {
			dst[i] = v
		}
	}
}

func (e *simulatedSet) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.running = false
	e.codes = nil
	e.backend.mu.Lock()
	e.backend.live--
	e.backend.mu.Unlock()
	return nil
}
