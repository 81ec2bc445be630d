package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plexsphere/hwcountd/internal/perfevent"
)

// SimulatedConfig is the file form of the simulated backend configuration.
type SimulatedConfig struct {
	// PhysicalCounters is the counter budget without multiplexing.
	// Default: 4
	PhysicalCounters int `yaml:"physical_counters"`

	// Events limits the vocabulary to these event codes, with or without
	// the PERF_COUNT_HW_ prefix. Empty means every generic event.
	Events []string `yaml:"events"`

	// Rate is the number of events counted per second per counter.
	// Default: 1000
	Rate uint64 `yaml:"rate"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *SimulatedConfig) ApplyDefaults() {
	if c.PhysicalCounters == 0 {
		c.PhysicalCounters = perfevent.DefaultPhysicalCounters
	}
	if c.Rate == 0 {
		c.Rate = perfevent.DefaultSimulatedRate
	}
}

// Validate checks that configuration values are within acceptable ranges.
func (c *SimulatedConfig) Validate() error {
	if c.PhysicalCounters < 0 {
		return errors.New("agent: simulated config: PhysicalCounters must be >= 0")
	}
	_, err := c.events()
	return err
}

// events resolves the configured event codes against the generic vocabulary.
func (c *SimulatedConfig) events() ([]perfevent.EventInfo, error) {
	all := perfevent.GenericEvents()
	if len(c.Events) == 0 {
		return all, nil
	}
	bySymbol := make(map[string]perfevent.EventInfo, len(all))
	for _, ev := range all {
		bySymbol[ev.Symbol] = ev
	}
	out := make([]perfevent.EventInfo, 0, len(c.Events))
	for _, name := range c.Events {
		symbol := name
		if !strings.HasPrefix(symbol, perfevent.SymbolPrefix) {
			symbol = perfevent.SymbolPrefix + symbol
		}
		ev, ok := bySymbol[symbol]
		if !ok {
			return nil, fmt.Errorf("agent: simulated config: unknown event %q", name)
		}
		out = append(out, ev)
	}
	return out, nil
}

// NewBackend builds the counter backend selected by cfg.Backend.
func NewBackend(cfg *AgentConfig, logger *slog.Logger) (perfevent.Backend, error) {
	switch cfg.Backend {
	case BackendPerf:
		return perfevent.NewPerf(cfg.Perf, logger), nil
	case BackendSimulated:
		events, err := cfg.Simulated.events()
		if err != nil {
			return nil, err
		}
		return perfevent.NewSimulated(perfevent.SimulatedConfig{
			PhysicalCounters: cfg.Simulated.PhysicalCounters,
			Events:           events,
			Rate:             cfg.Simulated.Rate,
		}), nil
	}
	return nil, fmt.Errorf("agent: unknown backend %q", cfg.Backend)
}
