// Package packaging installs hwcountd as a systemd service on bare-metal Linux hosts.
package packaging

import (
	"errors"
	"fmt"
	"path/filepath"
)

// InstallConfig holds the configuration for installing hwcountd as a systemd service.
// InstallConfig is passed as a constructor argument; there is no file I/O in this package's config.
type InstallConfig struct {
	// BinaryPath is the path to install the hwcountd binary.
	// Default: /usr/local/bin/hwcountd
	BinaryPath string

	// ConfigDir is the configuration directory.
	// Default: /etc/hwcountd
	ConfigDir string

	// RunDir holds the local API socket.
	// Default: /var/run/hwcountd
	RunDir string

	// UnitFilePath is the path for the systemd unit file.
	// Default: /etc/systemd/system/hwcountd.service
	UnitFilePath string

	// ServiceName is the systemd service name.
	// Default: hwcountd
	ServiceName string

	// Backend is the counter backend written to the default config.
	// Default: perf
	Backend string

	// SocketGroup is the group granted access to the local API socket.
	// Default: hwcountd
	SocketGroup string

	// Enable enables the service to start on boot after installing it.
	Enable bool
}

const (
	// DefaultBinaryPath is the default path to install the hwcountd binary.
	DefaultBinaryPath = "/usr/local/bin/hwcountd"
	// DefaultConfigDir is the default configuration directory.
	DefaultConfigDir = "/etc/hwcountd"
	// DefaultRunDir is the default runtime directory.
	DefaultRunDir = "/var/run/hwcountd"
	// DefaultServiceName is the default systemd service name.
	DefaultServiceName = "hwcountd"
	// DefaultUnitFilePath is the default path for the systemd unit file.
	DefaultUnitFilePath = "/etc/systemd/system/hwcountd.service"
	// DefaultBackend is the default counter backend.
	DefaultBackend = "perf"
	// DefaultSocketGroup is the default socket group.
	DefaultSocketGroup = "hwcountd"
)

// ApplyDefaults sets default values for zero-valued fields.
func (c *InstallConfig) ApplyDefaults() {
	if c.BinaryPath == "" {
		c.BinaryPath = DefaultBinaryPath
	}
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir
	}
	if c.RunDir == "" {
		c.RunDir = DefaultRunDir
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.UnitFilePath == "" {
		c.UnitFilePath = DefaultUnitFilePath
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.SocketGroup == "" {
		c.SocketGroup = DefaultSocketGroup
	}
}

// Validate checks that required fields are set.
func (c *InstallConfig) Validate() error {
	if c.BinaryPath == "" {
		return errors.New("packaging: config: BinaryPath is required")
	}
	if c.ConfigDir == "" {
		return errors.New("packaging: config: ConfigDir is required")
	}
	if c.RunDir == "" {
		return errors.New("packaging: config: RunDir is required")
	}
	if c.ServiceName == "" {
		return errors.New("packaging: config: ServiceName is required")
	}
	if c.UnitFilePath == "" {
		return errors.New("packaging: config: UnitFilePath is required")
	}
	if c.Backend != "perf" && c.Backend != "simulated" {
		return fmt.Errorf("packaging: config: unknown backend %q", c.Backend)
	}
	return nil
}

// ConfigPath returns the path of the daemon config file.
func (c *InstallConfig) ConfigPath() string {
	return filepath.Join(c.ConfigDir, "config.yaml")
}

// SocketPath returns the path of the local API socket.
func (c *InstallConfig) SocketPath() string {
	return filepath.Join(c.RunDir, "api.sock")
}
