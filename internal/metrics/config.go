// Package metrics exposes the agent's own health as Prometheus metrics:
// event set rebuilds, counter add failures, request outcomes, and host
// facts. Hardware counter values are never exported here.
package metrics

import (
	"errors"
	"strings"
)

// DefaultPath is the default HTTP path of the exposition endpoint.
const DefaultPath = "/metrics"

// Config holds the configuration for self metrics.
type Config struct {
	// Enabled controls whether the exposition endpoint is served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path of the exposition endpoint on the local API.
	// Default: /metrics
	Path string `yaml:"path"`

	// GoRuntime adds the Go runtime and process collectors.
	GoRuntime bool `yaml:"go_runtime"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Enabled == nil {
		v := true
		c.Enabled = &v
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
}

// IsEnabled reports whether self metrics are served.
func (c *Config) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if !c.IsEnabled() {
		return nil
	}
	if !strings.HasPrefix(c.Path, "/") {
		return errors.New("metrics: config: Path must start with /")
	}
	if strings.HasPrefix(c.Path, "/v1/") {
		return errors.New("metrics: config: Path must not be under /v1/")
	}
	return nil
}
