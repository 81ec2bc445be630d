package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/plexsphere/hwcountd/internal/catalog"
	"github.com/plexsphere/hwcountd/internal/counters"
	"github.com/plexsphere/hwcountd/internal/nodeapi"
	"github.com/plexsphere/hwcountd/internal/perfevent"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startTestAgent serves a real counter agent over a simulated backend on a
// Unix socket. Every connection shares one root session.
func startTestAgent(t *testing.T) string {
	t.Helper()

	sim := perfevent.NewSimulated(perfevent.SimulatedConfig{
		Events: perfevent.GenericEvents()[:3],
	})
	cat, err := catalog.Discover(sim, discardLogger())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	ag := counters.New(counters.Config{}, cat, sim, discardLogger())

	agentCtx, stopAgent := context.WithCancel(context.Background())
	agentDone := make(chan error, 1)
	go func() { agentDone <- ag.Run(agentCtx) }()
	if err := ag.SessionAttribute(agentCtx, 0, counters.AttrUserID, "0"); err != nil {
		stopAgent()
		t.Fatalf("SessionAttribute: %v", err)
	}

	socketPath := filepath.Join(t.TempDir(), "api.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		stopAgent()
		t.Fatalf("listen unix: %v", err)
	}

	h := nodeapi.NewHandler(ag, cat, nil, "", 0, discardLogger())
	srv := &http.Server{
		Handler: h.Mux(),
		ConnContext: func(ctx context.Context, _ net.Conn) context.Context {
			return nodeapi.WithSession(ctx, 0)
		},
	}
	go func() { _ = srv.Serve(ln) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		stopAgent()
		<-agentDone
	})
	return socketPath
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if args == nil {
		// A nil slice makes cobra fall back to os.Args.
		args = []string{}
	}
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default. Flag values otherwise
// leak from one Execute to the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
