package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hwcountd/internal/agent"
	"github.com/plexsphere/hwcountd/internal/catalog"
	"github.com/plexsphere/hwcountd/internal/counters"
	"github.com/plexsphere/hwcountd/internal/metrics"
	"github.com/plexsphere/hwcountd/internal/nodeapi"
)

// drainTimeout is the maximum time for graceful shutdown.
const drainTimeout = 30 * time.Second

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the hwcountd agent",
	Long: "Start the hwcountd agent daemon. Discovers the hardware counters,\n" +
		"builds the initial event set, and serves the local API on a Unix socket.",
	RunE: runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)
}

// loadConfig reads the config file and applies CLI flag overrides. A missing
// file at the default path yields the default configuration.
func loadConfig(cmd *cobra.Command) (*agent.AgentConfig, error) {
	var cfg *agent.AgentConfig
	if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg = agent.DefaultConfig()
	} else {
		parsed, err := agent.ParseConfig(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = parsed
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if cmd.Flags().Changed("socket") {
		cfg.NodeAPI.SocketPath = socketPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runUp(cmd *cobra.Command, _ []string) error {
	// 1. Parse config.
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("hwcountd up: %w", err)
	}

	// 2. Set up structured logger.
	logger := setupLogger(cfg.LogLevel)

	logger.Info("starting hwcountd",
		"version", buildVersion,
		"backend", cfg.Backend,
	)

	// 3. Discover counters.
	be, err := agent.NewBackend(cfg, logger)
	if err != nil {
		return fmt.Errorf("hwcountd up: %w", err)
	}
	cat, err := catalog.Discover(be, logger)
	if err != nil {
		return fmt.Errorf("hwcountd up: %w", err)
	}

	// 4. Create counter agent and self metrics.
	counterAgent := counters.New(cfg.Counters, cat, be, logger)

	// 5. Create node API server.
	nodeAPISrv := nodeapi.NewServer(cfg.NodeAPI, counterAgent, cat, logger)

	if cfg.Metrics.IsEnabled() {
		reg := metrics.NewRegistry(cfg.Metrics, metrics.HostReader{}, logger)
		reg.SetCatalog(be.Name(), cat.Len())
		counterAgent.SetObserver(reg)
		nodeAPISrv.SetMetricsHandler(cfg.Metrics.Path, reg.Handler())
	}

	// 6. Create heartbeat service.
	heartbeat := agent.NewHeartbeatService(cfg.Heartbeat, counterAgent, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// The counter agent outlives the server so that closing connections
	// can still end their sessions.
	agentCtx, stopAgent := context.WithCancel(context.Background())
	defer stopAgent()
	agentDone := make(chan error, 1)
	go func() { agentDone <- counterAgent.Run(agentCtx) }()

	// Wait group for all goroutines.
	var wg sync.WaitGroup

	// 7. Start heartbeat.
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = heartbeat.Run(ctx)
	}()

	// 8. Start node API server.
	serverErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := nodeAPISrv.Start(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("node API server stopped", "error", err)
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server failure.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", ctx.Err())
	case err := <-serverErr:
		runErr = fmt.Errorf("hwcountd up: %w", err)
		stop()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		stopAgent()
		<-agentDone
		close(done)
	}()

	select {
	case <-done:
		// All goroutines exited cleanly.
	case <-time.After(drainTimeout):
		logger.Warn("drain timeout exceeded, forcing exit")
	}

	logger.Info("hwcountd stopped")
	return runErr
}

func setupLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
