// Package counters implements the hardware counter agent: the per-counter
// state table, the event set rebuild, TTL expiry, per-session access control,
// and the fetch/store request handlers, all driven from one serialized loop.
package counters

import (
	"errors"
	"time"
)

// DefaultAutoEnable is the default auto-enable duration, in ticks.
const DefaultAutoEnable uint32 = 120

// DefaultTickUnit is the default duration of one auto-enable tick.
const DefaultTickUnit = time.Second

// Config holds the configuration for the counter agent.
type Config struct {
	// AutoEnable is how long, in TickUnits, a fetched counter stays enabled.
	// It is also the expiry scan interval. Zero disables both.
	// Default: 120
	AutoEnable *uint32 `yaml:"auto_enable"`

	// Multiplex enables counter multiplexing on new event sets.
	// Default: true
	Multiplex *bool `yaml:"multiplex"`

	// TickUnit is the duration of one AutoEnable unit.
	// Default: 1s
	TickUnit time.Duration `yaml:"tick_unit"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.AutoEnable == nil {
		v := DefaultAutoEnable
		c.AutoEnable = &v
	}
	if c.Multiplex == nil {
		v := true
		c.Multiplex = &v
	}
	if c.TickUnit == 0 {
		c.TickUnit = DefaultTickUnit
	}
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.TickUnit < time.Millisecond {
		return errors.New("counters: config: TickUnit must be at least 1ms")
	}
	return nil
}
