package packaging

import (
	"os"
	"strings"
	"testing"
)

func TestNewSystemdController_ImplementsInterface(t *testing.T) {
	var _ SystemdController = NewSystemdController()
}

func TestRealRootChecker_IsRoot(t *testing.T) {
	checker := NewRootChecker()
	if got, want := checker.IsRoot(), os.Geteuid() == 0; got != want {
		t.Errorf("IsRoot() = %v, want %v", got, want)
	}
}

func TestRealSystemdController_IsAvailable(t *testing.T) {
	// The value depends on the host; it must not panic.
	_ = NewSystemdController().IsAvailable()
}

func TestSystemctl_MissingBinary(t *testing.T) {
	s := &systemctl{bin: "hwcountd-no-such-systemctl", timeout: systemctlTimeout}
	if s.IsAvailable() {
		t.Error("IsAvailable() = true for a missing binary")
	}
	if s.IsActive("hwcountd") {
		t.Error("IsActive() = true for a missing binary")
	}
	err := s.DaemonReload()
	if err == nil {
		t.Fatal("DaemonReload() = nil, want error")
	}
	if !strings.Contains(err.Error(), "packaging: systemctl daemon-reload") {
		t.Errorf("DaemonReload() error = %q", err)
	}
}
