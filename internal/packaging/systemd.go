package packaging

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// systemctlTimeout bounds a single systemctl invocation.
const systemctlTimeout = 30 * time.Second

// systemctl drives systemd through the systemctl binary.
type systemctl struct {
	bin     string
	timeout time.Duration
}

// NewSystemdController returns a SystemdController backed by systemctl.
func NewSystemdController() SystemdController {
	return &systemctl{bin: "systemctl", timeout: systemctlTimeout}
}

func (s *systemctl) IsAvailable() bool {
	_, err := exec.LookPath(s.bin)
	return err == nil
}

func (s *systemctl) DaemonReload() error       { return s.run("daemon-reload") }
func (s *systemctl) Enable(unit string) error  { return s.run("enable", unit) }
func (s *systemctl) Disable(unit string) error { return s.run("disable", unit) }
func (s *systemctl) Stop(unit string) error    { return s.run("stop", unit) }

func (s *systemctl) IsActive(unit string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return exec.CommandContext(ctx, s.bin, "is-active", "--quiet", unit).Run() == nil
}

func (s *systemctl) run(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, s.bin, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("packaging: systemctl %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return nil
}

type uidRootChecker struct{}

// NewRootChecker returns a RootChecker that checks the effective uid.
func NewRootChecker() RootChecker { return uidRootChecker{} }

func (uidRootChecker) IsRoot() bool { return os.Geteuid() == 0 }
