package perfevent

import "errors"

// DefaultPhysicalCounters is the general-purpose counter budget assumed when
// none is configured. Most x86 cores expose at least four.
const DefaultPhysicalCounters = 4

// DefaultSysRoot is the sysfs mount point probed for PMU devices.
const DefaultSysRoot = "/sys"

// PerfConfig holds the configuration for the perf_event_open backend.
type PerfConfig struct {
	// PhysicalCounters is the number of general-purpose counters per CPU.
	// Default: 4
	PhysicalCounters int `yaml:"physical_counters"`

	// ExcludeKernel stops events from counting in kernel mode, which lowers
	// the privilege required by perf_event_paranoid.
	ExcludeKernel bool `yaml:"exclude_kernel"`

	// CPUs lists the CPUs to count on. Empty means every logical CPU.
	CPUs []int `yaml:"cpus"`

	// SysRoot is the sysfs mount point. Default: /sys
	SysRoot string `yaml:"sys_root"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *PerfConfig) ApplyDefaults() {
	if c.PhysicalCounters == 0 {
		c.PhysicalCounters = DefaultPhysicalCounters
	}
	if c.SysRoot == "" {
		c.SysRoot = DefaultSysRoot
	}
}

// Validate checks that configuration values are within acceptable ranges.
func (c *PerfConfig) Validate() error {
	if c.PhysicalCounters < 0 {
		return errors.New("perfevent: config: PhysicalCounters must be >= 0")
	}
	for _, cpu := range c.CPUs {
		if cpu < 0 {
			return errors.New("perfevent: config: CPUs must be non-negative")
		}
	}
	return nil
}
