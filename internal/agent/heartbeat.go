// Package agent wires the hwcountd daemon together: the aggregated YAML
// configuration, backend selection, and the periodic heartbeat that reports
// counter agent liveness.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/plexsphere/hwcountd/internal/counters"
)

// DefaultHeartbeatInterval is the default heartbeat interval.
const DefaultHeartbeatInterval = time.Minute

// HeartbeatConfig holds the configuration for the heartbeat service.
type HeartbeatConfig struct {
	// Interval is the heartbeat log interval.
	// Default: 1m
	Interval time.Duration `yaml:"interval"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *HeartbeatConfig) ApplyDefaults() {
	if c.Interval == 0 {
		c.Interval = DefaultHeartbeatInterval
	}
}

// Validate checks that configuration values are within acceptable ranges.
func (c *HeartbeatConfig) Validate() error {
	if c.Interval < time.Second {
		return errors.New("agent: heartbeat config: Interval must be at least 1s")
	}
	return nil
}

// Snapshotter returns a copy of the counter table.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]counters.CounterState, error)
}

// HeartbeatSummary is what one heartbeat observed.
type HeartbeatSummary struct {
	Counters  int
	Requested int
	Counting  int
	Forever   int
}

// Summarize counts requested and counting counters in a snapshot.
func Summarize(states []counters.CounterState) HeartbeatSummary {
	s := HeartbeatSummary{Counters: len(states)}
	for _, st := range states {
		switch st.Activation.Kind {
		case counters.ActiveForever:
			s.Requested++
			s.Forever++
		case counters.ActiveUntil:
			s.Requested++
		}
		if st.Counting() {
			s.Counting++
		}
	}
	return s
}

// HeartbeatService periodically snapshots the counter agent and logs a
// summary, proving the serialized loop still answers requests.
type HeartbeatService struct {
	cfg      HeartbeatConfig
	agent    Snapshotter
	onReport func(HeartbeatSummary)
	logger   *slog.Logger
}

// NewHeartbeatService creates a new HeartbeatService. Defaults are applied
// for any zero-valued optional fields.
func NewHeartbeatService(cfg HeartbeatConfig, agent Snapshotter, logger *slog.Logger) *HeartbeatService {
	cfg.ApplyDefaults()
	return &HeartbeatService{
		cfg:    cfg,
		agent:  agent,
		logger: logger.With("component", "heartbeat"),
	}
}

// SetOnReport sets a callback invoked after every successful heartbeat.
func (s *HeartbeatService) SetOnReport(fn func(HeartbeatSummary)) {
	s.onReport = fn
}

// Run starts the heartbeat loop. It reports once immediately and then
// continues at the configured interval until ctx is cancelled.
// Run always returns nil.
func (s *HeartbeatService) Run(ctx context.Context) error {
	s.beat(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.beat(ctx)
		}
	}
}

func (s *HeartbeatService) beat(ctx context.Context) {
	states, err := s.agent.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, counters.ErrStopped) || ctx.Err() != nil {
			s.logger.DebugContext(ctx, "agent: heartbeat: agent not running", "error", err)
			return
		}
		s.logger.ErrorContext(ctx, "agent: heartbeat: snapshot failed", "error", err)
		return
	}
	sum := Summarize(states)
	s.logger.InfoContext(ctx, "heartbeat",
		"counters", sum.Counters,
		"requested", sum.Requested,
		"counting", sum.Counting,
		"forever", sum.Forever,
	)
	if s.onReport != nil {
		s.onReport(sum)
	}
}
