package cmd

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want statusLine
	}{
		{
			in:   "eventset stopped; no active counters",
			want: statusLine{State: "stopped"},
		},
		{
			in: "eventset running, multiplexed; CPU_CYCLES(forever): 2000, INSTRUCTIONS(6s): 4000",
			want: statusLine{
				State:       "running",
				Multiplexed: true,
				Counters: []statusCounter{
					{Code: "CPU_CYCLES", Remaining: "forever", Value: "2000"},
					{Code: "INSTRUCTIONS", Remaining: "6s", Value: "4000"},
				},
			},
		},
	}
	for _, tt := range tests {
		got, err := parseStatus(tt.in)
		if err != nil {
			t.Errorf("parseStatus(%q): %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseStatus(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseStatus_Malformed(t *testing.T) {
	for _, in := range []string{"", "running", "eventset running; CPU_CYCLES", "eventset running; CPU_CYCLES(5s)"} {
		if _, err := parseStatus(in); err == nil {
			t.Errorf("parseStatus(%q) = nil error, want error", in)
		}
	}
}

func TestStatusCommand_AgentNotRunning(t *testing.T) {
	_, err := runCLI(t, "status", "--socket", t.TempDir()+"/missing.sock")
	if err == nil {
		t.Fatal("expected error when agent is not running")
	}
	if !strings.Contains(err.Error(), "hwcountd status") {
		t.Errorf("error should mention 'hwcountd status', got: %v", err)
	}
}

func TestStatusCommand_Idle(t *testing.T) {
	sock := startTestAgent(t)

	output, err := runCLI(t, "status", "--socket", sock)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, output)
	}
	for _, want := range []string{
		"Event set:         stopped",
		"Physical counters: 4",
		"Auto-enable:       120s",
		"Multiplex:         on",
		"Active counters:   0",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestStatusCommand_AfterEnable(t *testing.T) {
	sock := startTestAgent(t)

	if out, err := runCLI(t, "enable", "CPU_CYCLES", "--socket", sock); err != nil {
		t.Fatalf("enable: %v\n%s", err, out)
	}
	output, err := runCLI(t, "status", "--socket", sock)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Event set:         running") {
		t.Errorf("event set should be running:\n%s", output)
	}
	if !strings.Contains(output, "CPU_CYCLES") || !strings.Contains(output, "forever") {
		t.Errorf("output should list CPU_CYCLES forever:\n%s", output)
	}
}

func TestStatusCommand_Help(t *testing.T) {
	output, _ := runCLI(t, "status", "--help")

	if !strings.Contains(output, "status") {
		t.Errorf("help should contain 'status', got: %s", output)
	}
	if !strings.Contains(output, "Unix socket") {
		t.Errorf("help should mention 'Unix socket', got: %s", output)
	}
}
