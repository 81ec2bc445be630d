package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plexsphere/hwcountd/internal/counters"
	"github.com/plexsphere/hwcountd/internal/metrics"
	"github.com/plexsphere/hwcountd/internal/nodeapi"
	"github.com/plexsphere/hwcountd/internal/perfevent"
)

const (
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultBackend is the default counter backend.
	DefaultBackend = BackendPerf
)

// Counter backends.
const (
	BackendPerf      = "perf"
	BackendSimulated = "simulated"
)

// AgentConfig is the top-level configuration for the hwcountd daemon.
// It aggregates all subsystem configurations and is populated from
// a YAML configuration file via ParseConfig.
type AgentConfig struct {
	// LogLevel is the log level: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// Backend selects the counter backend: "perf" or "simulated".
	// Default: "perf"
	Backend string `yaml:"backend"`

	Counters  counters.Config      `yaml:"counters"`
	Perf      perfevent.PerfConfig `yaml:"perf"`
	Simulated SimulatedConfig      `yaml:"simulated"`
	NodeAPI   nodeapi.Config       `yaml:"node_api"`
	Metrics   metrics.Config       `yaml:"metrics"`
	Heartbeat HeartbeatConfig      `yaml:"heartbeat"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *AgentConfig) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	c.Counters.ApplyDefaults()
	c.Perf.ApplyDefaults()
	c.Simulated.ApplyDefaults()
	c.NodeAPI.ApplyDefaults()
	c.Metrics.ApplyDefaults()
	c.Heartbeat.ApplyDefaults()
}

// Validate checks that required fields are set and values are acceptable.
func (c *AgentConfig) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("agent: config: invalid log_level %q", c.LogLevel)
	}
	if c.Backend != BackendPerf && c.Backend != BackendSimulated {
		return fmt.Errorf("agent: config: invalid backend %q (must be %q or %q)", c.Backend, BackendPerf, BackendSimulated)
	}
	if err := c.Counters.Validate(); err != nil {
		return err
	}
	if err := c.Perf.Validate(); err != nil {
		return err
	}
	if err := c.Simulated.Validate(); err != nil {
		return err
	}
	if err := c.NodeAPI.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Heartbeat.Validate(); err != nil {
		return err
	}
	return nil
}

// ParseConfig reads a YAML configuration file and returns an AgentConfig.
// It applies defaults and validates the configuration.
func ParseConfig(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent: config: read %s: %w", path, err)
	}
	var cfg AgentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("agent: config: parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a configuration with every default applied, used
// when no configuration file is given.
func DefaultConfig() *AgentConfig {
	var cfg AgentConfig
	cfg.ApplyDefaults()
	return &cfg
}
