package packaging

// SystemdController manages the hwcountd unit. Mutating calls return nil
// when the unit is already in the requested state.
type SystemdController interface {
	IsAvailable() bool
	DaemonReload() error
	Enable(service string) error
	Disable(service string) error
	// Stop returns nil if the service is not running.
	Stop(service string) error
	IsActive(service string) bool
}

// RootChecker reports whether the process runs as root.
type RootChecker interface {
	IsRoot() bool
}
