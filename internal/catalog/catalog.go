// Package catalog holds the immutable description of every metric the agent
// serves: the hardware counters discovered at startup and the fixed control
// metrics, indexed by identity and by dotted name.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plexsphere/hwcountd/internal/perfevent"
)

// Namespace is the root of every metric name.
const Namespace = "hwcount"

// ErrUnknownID indicates an identity that is not in the catalog.
var ErrUnknownID = errors.New("catalog: unknown metric id")

// CounterDefinition describes one hardware counter.
type CounterDefinition struct {
	// Index is the dense identity of the counter, also its item number.
	Index int

	// Name is the full dotted name, e.g. hwcount.system.CPU_CYCLES.
	Name string

	// Code is the backend symbol without the backend prefix, e.g. CPU_CYCLES.
	Code string

	ShortDescription string
	LongDescription  string

	// BackendCode references the counter in the backend.
	BackendCode perfevent.Code
}

// ID returns the metric identity of the counter.
func (d CounterDefinition) ID() ID { return CounterID(d.Index) }

// Catalog is built once by Discover and never changes afterwards.
type Catalog struct {
	counters    []CounterDefinition
	byCode      map[string]int
	tree        *Tree
	numCounters int
}

// controlNames lists the fixed metrics in registration order.
var controlNames = []struct {
	name string
	id   ID
}{
	{Namespace + ".control.enable", IDEnable},
	{Namespace + ".control.reset", IDReset},
	{Namespace + ".control.disable", IDDisable},
	{Namespace + ".control.status", IDStatus},
	{Namespace + ".control.auto_enable", IDAutoEnable},
	{Namespace + ".control.multiplex", IDMultiplex},
	{Namespace + ".available.num_counters", IDNumCounters},
}

// Discover builds the catalog from every available counter the backend
// reports. It fails when the host has no counter support or the backend
// cannot be initialized at the expected version.
func Discover(b perfevent.Backend, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "catalog")

	n := b.NumCounters()
	if n < 0 {
		return nil, fmt.Errorf("catalog: discover: %w", perfevent.ErrNoCounterSupport)
	}

	version, err := b.Init()
	if err != nil {
		return nil, fmt.Errorf("catalog: discover: init %s backend: %w", b.Name(), err)
	}
	if version != perfevent.Version {
		return nil, fmt.Errorf("catalog: discover: %w: got %d, want %d",
			perfevent.ErrVersionMismatch, version, perfevent.Version)
	}

	events, err := b.Events()
	if err != nil {
		return nil, fmt.Errorf("catalog: discover: enumerate events: %w", err)
	}

	c := &Catalog{
		byCode:      make(map[string]int),
		tree:        NewTree(),
		numCounters: n,
	}
	prefix := b.SymbolPrefix()
	for _, ev := range events {
		if ev.Count == 0 {
			logger.Debug("skipping uncounted event", "symbol", ev.Symbol)
			continue
		}
		code := strings.TrimPrefix(ev.Symbol, prefix)
		if code == "" {
			return nil, fmt.Errorf("catalog: discover: event symbol %q has no name after prefix %q", ev.Symbol, prefix)
		}
		if _, dup := c.byCode[code]; dup {
			logger.Warn("skipping duplicate event", "symbol", ev.Symbol)
			continue
		}
		def := CounterDefinition{
			Index:            len(c.counters),
			Name:             Namespace + ".system." + code,
			Code:             code,
			ShortDescription: ev.ShortDescr,
			LongDescription:  ev.LongDescr,
			BackendCode:      ev.Code,
		}
		if err := c.tree.Add(def.Name, def.ID()); err != nil {
			return nil, fmt.Errorf("catalog: discover: %w", err)
		}
		c.byCode[code] = def.Index
		c.counters = append(c.counters, def)
	}
	for _, m := range controlNames {
		if err := c.tree.Add(m.name, m.id); err != nil {
			return nil, fmt.Errorf("catalog: discover: %w", err)
		}
	}

	logger.Info("catalog built",
		"backend", b.Name(),
		"counters", len(c.counters),
		"physical_counters", n,
	)
	return c, nil
}

// Len returns the number of hardware counters.
func (c *Catalog) Len() int { return len(c.counters) }

// NumCounters returns the number of physical counters the backend reported.
func (c *Catalog) NumCounters() int { return c.numCounters }

// Counter returns the definition with dense identity i.
func (c *Catalog) Counter(i int) (CounterDefinition, bool) {
	if i < 0 || i >= len(c.counters) {
		return CounterDefinition{}, false
	}
	return c.counters[i], true
}

// Counters returns a copy of every definition in identity order.
func (c *Catalog) Counters() []CounterDefinition {
	out := make([]CounterDefinition, len(c.counters))
	copy(out, c.counters)
	return out
}

// FindCounter matches a short code (CPU_CYCLES) or full name
// (hwcount.system.CPU_CYCLES) to a counter index.
func (c *Catalog) FindCounter(name string) (int, bool) {
	if i, ok := c.byCode[name]; ok {
		return i, true
	}
	if code, ok := strings.CutPrefix(name, Namespace+".system."); ok {
		i, ok := c.byCode[code]
		return i, ok
	}
	return 0, false
}

// Lookup resolves a dotted name to its identity.
func (c *Catalog) Lookup(name string) (ID, error) { return c.tree.Lookup(name) }

// Children lists the immediate children of a non-leaf name.
func (c *Catalog) Children(name string) ([]Child, error) { return c.tree.Children(name) }

// Name returns the dotted name of id.
func (c *Catalog) Name(id ID) (string, bool) { return c.tree.Name(id) }

// Known reports whether id names a metric in the catalog.
func (c *Catalog) Known(id ID) bool {
	_, ok := c.tree.Name(id)
	return ok
}
