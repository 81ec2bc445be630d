package packaging

import (
	"testing"
)

func TestInstallConfig_ApplyDefaults(t *testing.T) {
	cfg := InstallConfig{}
	cfg.ApplyDefaults()

	tests := []struct {
		field, got, want string
	}{
		{"BinaryPath", cfg.BinaryPath, "/usr/local/bin/hwcountd"},
		{"ConfigDir", cfg.ConfigDir, "/etc/hwcountd"},
		{"RunDir", cfg.RunDir, "/var/run/hwcountd"},
		{"ServiceName", cfg.ServiceName, "hwcountd"},
		{"UnitFilePath", cfg.UnitFilePath, "/etc/systemd/system/hwcountd.service"},
		{"Backend", cfg.Backend, "perf"},
		{"SocketGroup", cfg.SocketGroup, "hwcountd"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
	if cfg.Enable {
		t.Error("Enable = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestInstallConfig_CustomValues(t *testing.T) {
	cfg := InstallConfig{
		BinaryPath:  "/opt/hwcountd/bin/hwcountd",
		ConfigDir:   "/opt/hwcountd/etc",
		RunDir:      "/run/hwc",
		ServiceName: "hwcountd-lab",
		Backend:     "simulated",
		SocketGroup: "perf",
	}
	cfg.ApplyDefaults()

	if cfg.BinaryPath != "/opt/hwcountd/bin/hwcountd" {
		t.Errorf("BinaryPath = %q", cfg.BinaryPath)
	}
	if cfg.ServiceName != "hwcountd-lab" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.Backend != "simulated" {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if got := cfg.ConfigPath(); got != "/opt/hwcountd/etc/config.yaml" {
		t.Errorf("ConfigPath() = %q", got)
	}
	if got := cfg.SocketPath(); got != "/run/hwc/api.sock" {
		t.Errorf("SocketPath() = %q", got)
	}
}

func TestInstallConfig_Validate(t *testing.T) {
	valid := func() InstallConfig {
		cfg := InstallConfig{}
		cfg.ApplyDefaults()
		return cfg
	}
	tests := []struct {
		name    string
		mutate  func(*InstallConfig)
		wantErr string
	}{
		{"empty binary path", func(c *InstallConfig) { c.BinaryPath = "" }, "packaging: config: BinaryPath is required"},
		{"empty config dir", func(c *InstallConfig) { c.ConfigDir = "" }, "packaging: config: ConfigDir is required"},
		{"empty run dir", func(c *InstallConfig) { c.RunDir = "" }, "packaging: config: RunDir is required"},
		{"empty service name", func(c *InstallConfig) { c.ServiceName = "" }, "packaging: config: ServiceName is required"},
		{"empty unit file path", func(c *InstallConfig) { c.UnitFilePath = "" }, "packaging: config: UnitFilePath is required"},
		{"unknown backend", func(c *InstallConfig) { c.Backend = "pmu" }, `packaging: config: unknown backend "pmu"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want %q", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Validate() = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}
