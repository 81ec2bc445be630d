package catalog

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/plexsphere/hwcountd/internal/perfevent"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubBackend is a Backend that only answers discovery calls.
type stubBackend struct {
	numCounters int
	version     int
	initErr     error
	events      []perfevent.EventInfo
}

func (b *stubBackend) Name() string         { return "stub" }
func (b *stubBackend) SymbolPrefix() string { return "STUB_" }
func (b *stubBackend) Init() (int, error)   { return b.version, b.initErr }
func (b *stubBackend) NumCounters() int     { return b.numCounters }
func (b *stubBackend) Events() ([]perfevent.EventInfo, error) {
	return b.events, nil
}
func (b *stubBackend) NewEventSet() (perfevent.EventSet, error) {
	return nil, errors.New("not implemented")
}

func newStub() *stubBackend {
	return &stubBackend{
		numCounters: 2,
		version:     perfevent.Version,
		events: []perfevent.EventInfo{
			{Symbol: "STUB_TOT_CYC", Code: 10, Count: 1, ShortDescr: "cycles", LongDescr: "total cycles"},
			{Symbol: "STUB_MISSING", Code: 11, Count: 0},
			{Symbol: "STUB_TOT_INS", Code: 12, Count: 4, ShortDescr: "instructions"},
		},
	}
}

func TestDiscover_SkipsUncountedEvents(t *testing.T) {
	c, err := Discover(newStub(), discardLogger())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	def, ok := c.Counter(1)
	if !ok {
		t.Fatal("Counter(1) missing")
	}
	if def.Code != "TOT_INS" {
		t.Errorf("Code = %q, want TOT_INS", def.Code)
	}
	if def.Name != "hwcount.system.TOT_INS" {
		t.Errorf("Name = %q, want hwcount.system.TOT_INS", def.Name)
	}
	if def.BackendCode != 12 {
		t.Errorf("BackendCode = %d, want 12", def.BackendCode)
	}
	if c.NumCounters() != 2 {
		t.Errorf("NumCounters = %d, want 2", c.NumCounters())
	}
}

func TestDiscover_NoCounterSupport(t *testing.T) {
	b := newStub()
	b.numCounters = -1
	_, err := Discover(b, discardLogger())
	if !errors.Is(err, perfevent.ErrNoCounterSupport) {
		t.Fatalf("Discover = %v, want ErrNoCounterSupport", err)
	}
}

func TestDiscover_VersionMismatch(t *testing.T) {
	b := newStub()
	b.version = perfevent.Version + 1
	_, err := Discover(b, discardLogger())
	if !errors.Is(err, perfevent.ErrVersionMismatch) {
		t.Fatalf("Discover = %v, want ErrVersionMismatch", err)
	}
}

func TestDiscover_InitFailure(t *testing.T) {
	b := newStub()
	b.initErr = errors.New("no library")
	if _, err := Discover(b, discardLogger()); err == nil {
		t.Fatal("Discover succeeded despite init failure")
	}
}

func TestDiscover_SimulatedBackend(t *testing.T) {
	c, err := Discover(perfevent.NewSimulated(perfevent.SimulatedConfig{}), discardLogger())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	id, err := c.Lookup("hwcount.system.CPU_CYCLES")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if id != CounterID(0) {
		t.Errorf("id = %s, want 0.0", id)
	}
}

func TestCatalog_FindCounter(t *testing.T) {
	c, _ := Discover(newStub(), discardLogger())

	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"TOT_CYC", 0, true},
		{"hwcount.system.TOT_INS", 1, true},
		{"MISSING", 0, false},
		{"hwcount.system.BOGUS", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := c.FindCounter(tt.name)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("FindCounter(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCatalog_ControlNamesRegistered(t *testing.T) {
	c, _ := Discover(newStub(), discardLogger())

	id, err := c.Lookup("hwcount.control.auto_enable")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if id != IDAutoEnable {
		t.Errorf("id = %s, want %s", id, IDAutoEnable)
	}

	children, err := c.Children("hwcount")
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	want := []Child{{"system", false}, {"control", false}, {"available", false}}
	if len(children) != len(want) {
		t.Fatalf("Children = %v, want %v", children, want)
	}
	for i := range want {
		if children[i] != want[i] {
			t.Errorf("Children[%d] = %v, want %v", i, children[i], want[i])
		}
	}
}

func TestCatalog_Describe(t *testing.T) {
	c, _ := Discover(newStub(), discardLogger())

	tests := []struct {
		id   ID
		want Descriptor
	}{
		{CounterID(0), counterDesc},
		{IDStatus, stringDesc},
		{IDEnable, stringDesc},
		{IDAutoEnable, autoEnableDesc},
		{IDMultiplex, multiplexDesc},
		{IDNumCounters, numCountDesc},
	}
	for _, tt := range tests {
		got, err := c.Describe(tt.id)
		if err != nil {
			t.Errorf("Describe(%s): %v", tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Describe(%s) = %+v, want %+v", tt.id, got, tt.want)
		}
	}

	if _, err := c.Describe(CounterID(9)); !errors.Is(err, ErrUnknownID) {
		t.Errorf("Describe(unknown) = %v, want ErrUnknownID", err)
	}
}

func TestCatalog_Text(t *testing.T) {
	c, _ := Discover(newStub(), discardLogger())

	got, err := c.Text(CounterID(0), TextOneLine)
	if err != nil || got != "cycles" {
		t.Errorf("Text(oneline) = %q, %v; want cycles", got, err)
	}
	got, err = c.Text(CounterID(0), TextHelp)
	if err != nil || got != "total cycles" {
		t.Errorf("Text(help) = %q, %v; want total cycles", got, err)
	}
	if _, err := c.Text(CounterID(1), TextHelp); !errors.Is(err, ErrNoText) {
		t.Errorf("Text without long description = %v, want ErrNoText", err)
	}
	if got, err := c.Text(IDReset, TextOneLine); err != nil || got == "" {
		t.Errorf("Text(reset) = %q, %v; want fixed help", got, err)
	}
}

func TestParseTextKind(t *testing.T) {
	if k, err := ParseTextKind("help"); err != nil || k != TextHelp {
		t.Errorf("ParseTextKind(help) = %v, %v", k, err)
	}
	if k, err := ParseTextKind(""); err != nil || k != TextOneLine {
		t.Errorf("ParseTextKind(\"\") = %v, %v", k, err)
	}
	if _, err := ParseTextKind("bogus"); err == nil {
		t.Error("ParseTextKind(bogus) succeeded")
	}
}
