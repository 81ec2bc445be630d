package nodeapi

import (
	"errors"
	"path/filepath"
	"time"
)

// Config holds the configuration for the local agent API server.
// Config is passed as a constructor argument; there is no file I/O in this package.
type Config struct {
	// SocketPath is the path to the Unix domain socket.
	// Default: /var/run/hwcountd/api.sock
	SocketPath string `yaml:"socket_path"`

	// SocketGroup owns the socket with mode 0660 when it exists. Otherwise
	// the socket is world accessible; access is checked per session.
	// Default: hwcountd
	SocketGroup string `yaml:"socket_group"`

	// ShutdownTimeout is the maximum time to wait for a graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of fetch and store request bodies.
	// Default: 1 MiB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// DefaultSocketPath is the default Unix domain socket path.
const DefaultSocketPath = "/var/run/hwcountd/api.sock"

// DefaultSocketGroup is the default socket group.
const DefaultSocketGroup = "hwcountd"

// DefaultShutdownTimeout is the default graceful shutdown timeout.
const DefaultShutdownTimeout = 5 * time.Second

// DefaultMaxBodyBytes is the default request body limit.
const DefaultMaxBodyBytes = 1 << 20

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.SocketPath == "" {
		c.SocketPath = DefaultSocketPath
	}
	if c.SocketGroup == "" {
		c.SocketGroup = DefaultSocketGroup
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	if c.SocketPath == "" {
		return errors.New("nodeapi: config: SocketPath is required")
	}
	if !filepath.IsAbs(c.SocketPath) {
		return errors.New("nodeapi: config: SocketPath must be absolute")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("nodeapi: config: ShutdownTimeout must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("nodeapi: config: MaxBodyBytes must be positive")
	}
	return nil
}
