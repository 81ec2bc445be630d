//go:build linux

package perfevent

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScale(t *testing.T) {
	tests := []struct {
		name                    string
		value, enabled, running uint64
		want                    uint64
	}{
		{"never scheduled", 100, 50, 0, 0},
		{"fully scheduled", 100, 50, 50, 100},
		{"half scheduled", 100, 100, 50, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scale(tt.value, tt.enabled, tt.running); got != tt.want {
				t.Errorf("scale(%d, %d, %d) = %d, want %d", tt.value, tt.enabled, tt.running, got, tt.want)
			}
		})
	}
}

func TestPerf_NumCountersWithoutPMU(t *testing.T) {
	p := NewPerf(PerfConfig{SysRoot: t.TempDir()}, discardLogger())
	if got := p.NumCounters(); got != -1 {
		t.Errorf("NumCounters = %d, want -1", got)
	}
}

func TestPerf_NumCountersWithPMU(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "bus/event_source/devices/cpu"), 0755); err != nil {
		t.Fatal(err)
	}
	p := NewPerf(PerfConfig{SysRoot: root, PhysicalCounters: 6}, discardLogger())
	if got := p.NumCounters(); got != 6 {
		t.Errorf("NumCounters = %d, want 6", got)
	}
}

func TestPerf_NewEventSetBeforeInit(t *testing.T) {
	p := NewPerf(PerfConfig{}, discardLogger())
	if _, err := p.NewEventSet(); err == nil {
		t.Error("NewEventSet before Init succeeded")
	}
}

// TestPerf_LiveCycles counts cycles on CPU 0 when the host allows it.
func TestPerf_LiveCycles(t *testing.T) {
	p := NewPerf(PerfConfig{CPUs: []int{0}, ExcludeKernel: true}, discardLogger())
	if p.NumCounters() < 0 {
		t.Skip("no core PMU")
	}
	if _, err := p.Init(); err != nil {
		t.Skipf("perf unavailable: %v", err)
	}
	events, err := p.Events()
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if events[0].Count == 0 {
		t.Skip("cpu cycles not countable here")
	}

	set, err := p.NewEventSet()
	if err != nil {
		t.Fatalf("NewEventSet: %v", err)
	}
	defer set.Close()

	if err := set.Add(events[0].Code); err != nil {
		t.Skipf("Add: %v", err)
	}
	if err := set.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	values := make([]uint64, 1)
	if err := set.Stop(values); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	t.Logf("cycles on cpu0: %d", values[0])
}
