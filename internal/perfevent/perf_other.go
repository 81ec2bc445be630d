//go:build !linux

package perfevent

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Perf is unavailable outside Linux; every operation returns ErrUnsupported.
type Perf struct {
	cfg PerfConfig
}

// NewPerf creates a Perf backend that reports no counter support.
func NewPerf(cfg PerfConfig, _ *slog.Logger) *Perf {
	cfg.ApplyDefaults()
	return &Perf{cfg: cfg}
}

func (p *Perf) Name() string         { return "perf" }
func (p *Perf) SymbolPrefix() string { return SymbolPrefix }

func (p *Perf) Init() (int, error) {
	return 0, fmt.Errorf("perfevent: perf on %s: %w", runtime.GOOS, ErrUnsupported)
}

func (p *Perf) NumCounters() int { return -1 }

func (p *Perf) Events() ([]EventInfo, error) { return nil, ErrUnsupported }

func (p *Perf) NewEventSet() (EventSet, error) { return nil, ErrUnsupported }
