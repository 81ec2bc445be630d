//go:build linux

package perfevent

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sys/unix"
)

// perfReadSize is the size of one read(2) with TOTAL_TIME_ENABLED and
// TOTAL_TIME_RUNNING: value, time enabled, time running.
const perfReadSize = 24

// Perf is a Backend on top of perf_event_open(2). Every event is opened once
// per CPU with pid -1, so counts are system wide.
type Perf struct {
	cfg    PerfConfig
	logger *slog.Logger
	cpus   []int
}

// NewPerf creates a Perf backend. Config defaults are applied automatically.
func NewPerf(cfg PerfConfig, logger *slog.Logger) *Perf {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Perf{cfg: cfg, logger: logger.With("component", "perfevent")}
}

func (p *Perf) Name() string         { return "perf" }
func (p *Perf) SymbolPrefix() string { return SymbolPrefix }

// Init checks that the kernel exposes perf events and resolves the CPU list.
func (p *Perf) Init() (int, error) {
	if _, err := os.Stat("/proc/sys/kernel/perf_event_paranoid"); err != nil {
		return 0, fmt.Errorf("perfevent: perf: %w: %v", ErrNoCounterSupport, err)
	}
	if err := p.resolveCPUs(); err != nil {
		return 0, err
	}
	p.logger.Debug("perf backend initialized", "cpus", len(p.cpus))
	return Version, nil
}

func (p *Perf) resolveCPUs() error {
	if len(p.cfg.CPUs) > 0 {
		p.cpus = append([]int(nil), p.cfg.CPUs...)
		return nil
	}
	n, err := cpu.Counts(true)
	if err != nil {
		return fmt.Errorf("perfevent: perf: count cpus: %w", err)
	}
	if n <= 0 {
		return errors.New("perfevent: perf: no online cpus")
	}
	p.cpus = make([]int, n)
	for i := range p.cpus {
		p.cpus[i] = i
	}
	return nil
}

// NumCounters returns the configured counter budget, or -1 when sysfs shows
// no core PMU.
func (p *Perf) NumCounters() int {
	matches, err := filepath.Glob(filepath.Join(p.cfg.SysRoot, "bus/event_source/devices/cpu*"))
	if err != nil || len(matches) == 0 {
		return -1
	}
	return p.cfg.PhysicalCounters
}

// Events probes every generic event on the first CPU. Events the kernel
// refuses to open are reported with a zero count.
func (p *Perf) Events() ([]EventInfo, error) {
	if len(p.cpus) == 0 {
		if err := p.resolveCPUs(); err != nil {
			return nil, err
		}
	}
	out := make([]EventInfo, 0, len(genericEvents))
	for _, d := range genericEvents {
		count := 0
		fd, err := p.open(encodeCode(d.typ, d.config), p.cpus[0])
		if err == nil {
			unix.Close(fd)
			count = len(p.cpus)
		} else {
			p.logger.Debug("event unavailable", "event", d.symbol, "error", err)
		}
		out = append(out, d.info(count))
	}
	return out, nil
}

func (p *Perf) NewEventSet() (EventSet, error) {
	if len(p.cpus) == 0 {
		return nil, errors.New("perfevent: perf: backend not initialized")
	}
	return &perfSet{backend: p}, nil
}

func (p *Perf) open(code Code, cpuID int) (int, error) {
	typ, config := decodeCode(code)
	attr := unix.PerfEventAttr{
		Type:        typ,
		Config:      config,
		Read_format: unix.PERF_FORMAT_TOTAL_TIME_ENABLED | unix.PERF_FORMAT_TOTAL_TIME_RUNNING,
		Bits:        unix.PerfBitDisabled,
	}
	attr.Size = uint32(unsafe.Sizeof(attr))
	if p.cfg.ExcludeKernel {
		attr.Bits |= unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv
	}
	fd, err := unix.PerfEventOpen(&attr, -1, cpuID, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return -1, fmt.Errorf("perf_event_open %s cpu %d: %w", code, cpuID, err)
	}
	return fd, nil
}

type perfCounter struct {
	code Code
	fds  []int
}

type perfSet struct {
	backend   *Perf
	counters  []perfCounter
	multiplex bool
	running   bool
}

// SetMultiplex lifts the counter budget. The kernel time-slices events that
// do not fit and the reads are scaled by time enabled over time running.
func (e *perfSet) SetMultiplex() error {
	if e.running {
		return ErrRunning
	}
	e.multiplex = true
	return nil
}

func (e *perfSet) Multiplexed() bool { return e.multiplex }

func (e *perfSet) Add(code Code) error {
	if e.running {
		return ErrRunning
	}
	if !e.multiplex && len(e.counters) >= e.backend.cfg.PhysicalCounters {
		return ErrConflict
	}
	c := perfCounter{code: code}
	for _, cpuID := range e.backend.cpus {
		fd, err := e.backend.open(code, cpuID)
		if err != nil {
			closeAll(c.fds)
			return fmt.Errorf("perfevent: perf: add: %w", err)
		}
		c.fds = append(c.fds, fd)
	}
	e.counters = append(e.counters, c)
	return nil
}

func (e *perfSet) Len() int { return len(e.counters) }

func (e *perfSet) Start() error {
	if e.running {
		return ErrRunning
	}
	for _, c := range e.counters {
		for _, fd := range c.fds {
			if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
				e.disable()
				return fmt.Errorf("perfevent: perf: reset %s: %w", c.code, err)
			}
			if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
				e.disable()
				return fmt.Errorf("perfevent: perf: enable %s: %w", c.code, err)
			}
		}
	}
	e.running = true
	return nil
}

func (e *perfSet) State() State {
	if e.running {
		return StateRunning
	}
	return StateStopped
}

func (e *perfSet) Read(dst []uint64) error {
	if !e.running {
		return ErrNotRunning
	}
	return e.read(dst)
}

func (e *perfSet) read(dst []uint64) error {
	if len(dst) < len(e.counters) {
		return fmt.Errorf("perfevent: perf: read: buffer holds %d values, need %d", len(dst), len(e.counters))
	}
	var buf [perfReadSize]byte
	for i, c := range e.counters {
		var total uint64
		for _, fd := range c.fds {
			n, err := unix.Read(fd, buf[:])
			if err != nil {
				return fmt.Errorf("perfevent: perf: read %s: %w", c.code, err)
			}
			if n != perfReadSize {
				return fmt.Errorf("perfevent: perf: read %s: short read of %d bytes", c.code, n)
			}
			total += scale(
				binary.NativeEndian.Uint64(buf[0:8]),
				binary.NativeEndian.Uint64(buf[8:16]),
				binary.NativeEndian.Uint64(buf[16:24]),
			)
		}
		dst[i] = total
	}
	return nil
}

// scale extrapolates a multiplexed count to the full enabled time.
func scale(value, enabled, running uint64) uint64 {
	if running == 0 {
		return 0
	}
	if running >= enabled {
		return value
	}
	return uint64(float64(value) * float64(enabled) / float64(running))
}

func (e *perfSet) Stop(dst []uint64) error {
	if !e.running {
		return ErrNotRunning
	}
	err := e.read(dst)
	e.disable()
	e.running = false
	return err
}

func (e *perfSet) disable() {
	for _, c := range e.counters {
		for _, fd := range c.fds {
			_ = unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0)
		}
	}
}

func (e *perfSet) Close() error {
	var errs []error
	for _, c := range e.counters {
		if err := closeAll(c.fds); err != nil {
			errs = append(errs, err)
		}
	}
	e.counters = nil
	e.running = false
	return errors.Join(errs...)
}

func closeAll(fds []int) error {
	var errs []error
	for _, fd := range fds {
		if err := unix.Close(fd); err != nil {
			errs = append(errs, fmt.Errorf("perfevent: perf: close fd %d: %w", fd, err))
		}
	}
	return errors.Join(errs...)
}
