package counters

import (
	"context"
	"log/slog"
	"time"

	"github.com/plexsphere/hwcountd/internal/catalog"
	"github.com/plexsphere/hwcountd/internal/perfevent"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Agent owns every piece of mutable counter state. All of it is touched only
// from the goroutine running Run: requests are posted to the loop as
// closures and the expiry ticker is consumed by the same select, so a timer
// tick never interleaves with a fetch or a rebuild.
type Agent struct {
	cfg        Config
	catalog    *catalog.Catalog
	table      *Table
	events     *Manager
	sessions   *Sessions
	autoEnable uint32
	clock      Clock
	logger     *slog.Logger
	observer   Observer

	reqCh   chan func()
	done    chan struct{}
	running bool
	ticker  *time.Ticker
	tickC   <-chan time.Time
}

// New creates an Agent over the given catalog and backend. Config defaults
// are applied automatically. Call Run to start serving requests.
func New(cfg Config, cat *catalog.Catalog, backend perfevent.Backend, logger *slog.Logger) *Agent {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	lg := logger.With("component", "counters")
	table := NewTable(cat.Len())
	return &Agent{
		cfg:        cfg,
		catalog:    cat,
		table:      table,
		events:     NewManager(backend, cat, table, *cfg.Multiplex, lg),
		sessions:   NewSessions(),
		autoEnable: *cfg.AutoEnable,
		clock:      realClock{},
		logger:     lg,
		observer:   nopObserver{},
		reqCh:      make(chan func()),
		done:       make(chan struct{}),
	}
}

// SetClock sets a custom clock for testing. Must be called before Run.
func (a *Agent) SetClock(c Clock) { a.clock = c }

// SetObserver sets the instrumentation hook. Must be called before Run.
func (a *Agent) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	a.observer = o
}

// Catalog returns the immutable catalog the agent serves.
func (a *Agent) Catalog() *catalog.Catalog { return a.catalog }

// Run builds the initial event set and serves requests and expiry ticks
// until ctx is cancelled. On return the event set is drained and destroyed.
func (a *Agent) Run(ctx context.Context) error {
	defer close(a.done)

	report := a.rebuild(ReasonStartup, a.clock.Now())
	if err := report.Err(); err != nil {
		a.logger.Warn("initial event set rebuild incomplete", "error", err)
	}

	a.running = true
	a.rearm()
	a.logger.Info("counter agent started",
		"counters", a.catalog.Len(),
		"auto_enable", a.autoEnable,
		"multiplex", a.events.Multiplex(),
	)

	defer func() {
		a.running = false
		a.disarm()
		if err := a.events.Close(); err != nil {
			a.logger.Warn("event set close failed", "error", err)
		}
		a.logger.Info("counter agent stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-a.reqCh:
			fn()
		case <-a.tickC:
			a.expire(a.clock.Now())
		}
	}
}

// do runs fn on the agent loop and waits for it to finish.
func (a *Agent) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	req := func() {
		defer close(finished)
		fn()
	}
	select {
	case a.reqCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rearm replaces the expiry ticker with one at the current auto-enable
// interval, or stops it when auto-enable is zero.
func (a *Agent) rearm() {
	a.disarm()
	if !a.running || a.autoEnable == 0 {
		return
	}
	a.ticker = time.NewTicker(a.ttl())
	a.tickC = a.ticker.C
}

func (a *Agent) disarm() {
	if a.ticker != nil {
		a.ticker.Stop()
	}
	a.ticker = nil
	a.tickC = nil
}

// ttl returns the auto-enable duration.
func (a *Agent) ttl() time.Duration {
	return time.Duration(a.autoEnable) * a.cfg.TickUnit
}

func (a *Agent) rebuild(reason Reason, now time.Time) RebuildReport {
	report := a.events.Rebuild(reason, now)
	a.observer.Rebuilt(report)
	return report
}

// Fetch reads the given metrics for a session.
func (a *Agent) Fetch(ctx context.Context, sess SessionID, ids []catalog.ID) ([]FetchResult, error) {
	var (
		results []FetchResult
		err     error
	)
	if doErr := a.do(ctx, func() { results, err = a.fetch(sess, ids, a.clock.Now()) }); doErr != nil {
		return nil, doErr
	}
	return results, err
}

// Store applies control values for a session.
func (a *Agent) Store(ctx context.Context, sess SessionID, values []StoreValue) error {
	var err error
	if doErr := a.do(ctx, func() { err = a.store(sess, values, a.clock.Now()) }); doErr != nil {
		return doErr
	}
	return err
}

// SessionAttribute delivers a session attribute from the transport.
func (a *Agent) SessionAttribute(ctx context.Context, sess SessionID, kind AttrKind, value string) error {
	var err error
	if doErr := a.do(ctx, func() {
		err = a.sessions.Attribute(sess, kind, value)
		if err != nil {
			a.logger.Debug("session attribute rejected", "session", sess, "kind", kind, "error", err)
		}
	}); doErr != nil {
		return doErr
	}
	return err
}

// SessionEnd clears the access record of a session.
func (a *Agent) SessionEnd(ctx context.Context, sess SessionID) error {
	return a.do(ctx, func() { a.sessions.End(sess) })
}

// Snapshot returns a copy of every counter record.
func (a *Agent) Snapshot(ctx context.Context) ([]CounterState, error) {
	var out []CounterState
	if err := a.do(ctx, func() { out = a.table.Snapshot() }); err != nil {
		return nil, err
	}
	return out, nil
}
