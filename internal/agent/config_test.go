package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/plexsphere/hwcountd/internal/packaging"
)

func TestAgentConfig_ApplyDefaults(t *testing.T) {
	var cfg AgentConfig
	cfg.ApplyDefaults()

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Backend != BackendPerf {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendPerf)
	}
	if cfg.Counters.AutoEnable == nil || *cfg.Counters.AutoEnable != 120 {
		t.Errorf("Counters.AutoEnable = %v, want 120", cfg.Counters.AutoEnable)
	}
	if cfg.NodeAPI.SocketPath != "/var/run/hwcountd/api.sock" {
		t.Errorf("NodeAPI.SocketPath = %q", cfg.NodeAPI.SocketPath)
	}
	if !cfg.Metrics.IsEnabled() {
		t.Error("Metrics should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestAgentConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AgentConfig)
		wantErr string
	}{
		{"invalid log level", func(c *AgentConfig) { c.LogLevel = "loud" }, `invalid log_level "loud"`},
		{"invalid backend", func(c *AgentConfig) { c.Backend = "pmu" }, `invalid backend "pmu"`},
		{"tick unit too short", func(c *AgentConfig) { c.Counters.TickUnit = time.Microsecond }, "TickUnit must be at least 1ms"},
		{"relative socket", func(c *AgentConfig) { c.NodeAPI.SocketPath = "api.sock" }, "SocketPath must be absolute"},
		{"unknown simulated event", func(c *AgentConfig) { c.Simulated.Events = []string{"FOO"} }, `unknown event "FOO"`},
		{"heartbeat too fast", func(c *AgentConfig) { c.Heartbeat.Interval = time.Millisecond }, "Interval must be at least 1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseConfig_ValidYAML(t *testing.T) {
	yaml := `
log_level: debug
backend: simulated
counters:
  auto_enable: 30
  multiplex: false
  tick_unit: 500ms
simulated:
  physical_counters: 2
  events: [CPU_CYCLES, PERF_COUNT_HW_INSTRUCTIONS]
node_api:
  socket_path: /tmp/hwcountd/api.sock
  socket_group: wheel
metrics:
  enabled: false
heartbeat:
  interval: 10s
`
	path := writeTemp(t, yaml)
	cfg, err := ParseConfig(path)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Backend != BackendSimulated {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendSimulated)
	}
	if *cfg.Counters.AutoEnable != 30 {
		t.Errorf("AutoEnable = %d, want 30", *cfg.Counters.AutoEnable)
	}
	if *cfg.Counters.Multiplex {
		t.Error("Multiplex = true, want false")
	}
	if cfg.Counters.TickUnit != 500*time.Millisecond {
		t.Errorf("TickUnit = %v, want 500ms", cfg.Counters.TickUnit)
	}
	if cfg.Simulated.PhysicalCounters != 2 || len(cfg.Simulated.Events) != 2 {
		t.Errorf("Simulated = %+v", cfg.Simulated)
	}
	if cfg.NodeAPI.SocketPath != "/tmp/hwcountd/api.sock" || cfg.NodeAPI.SocketGroup != "wheel" {
		t.Errorf("NodeAPI = %+v", cfg.NodeAPI)
	}
	if cfg.Metrics.IsEnabled() {
		t.Error("Metrics enabled, want disabled")
	}
	if cfg.Heartbeat.Interval != 10*time.Second {
		t.Errorf("Heartbeat.Interval = %v, want 10s", cfg.Heartbeat.Interval)
	}
}

func TestParseConfig_AutoEnableZeroKept(t *testing.T) {
	path := writeTemp(t, "counters:\n  auto_enable: 0\n")
	cfg, err := ParseConfig(path)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if *cfg.Counters.AutoEnable != 0 {
		t.Errorf("AutoEnable = %d, want explicit 0 preserved", *cfg.Counters.AutoEnable)
	}
}

func TestParseConfig_InvalidValue(t *testing.T) {
	path := writeTemp(t, "backend: gpu\n")
	if _, err := ParseConfig(path); err == nil {
		t.Fatal("expected error for invalid backend")
	}
}

func TestParseConfig_FileNotFound(t *testing.T) {
	_, err := ParseConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for non-existent file")
	}
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "{{invalid yaml")
	_, err := ParseConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

// writeTemp writes content to a temporary YAML file and returns its path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestParseConfig_InstalledDefault(t *testing.T) {
	content := packaging.GenerateDefaultConfig(packaging.InstallConfig{Backend: "simulated", RunDir: "/run/hwc"})
	cfg, err := ParseConfig(writeTemp(t, content))
	if err != nil {
		t.Fatalf("ParseConfig() = %v\n%s", err, content)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Backend != BackendSimulated {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendSimulated)
	}
	if cfg.NodeAPI.SocketPath != "/run/hwc/api.sock" {
		t.Errorf("SocketPath = %q, want /run/hwc/api.sock", cfg.NodeAPI.SocketPath)
	}
	if cfg.Heartbeat.Interval != time.Minute {
		t.Errorf("Heartbeat.Interval = %v, want 1m", cfg.Heartbeat.Interval)
	}
	if cfg.Counters.AutoEnable == nil || *cfg.Counters.AutoEnable != 120 {
		t.Errorf("Counters.AutoEnable = %v, want 120", cfg.Counters.AutoEnable)
	}
}
