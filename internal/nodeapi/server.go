// Package nodeapi serves the local agent API: HTTP/1.1 over a Unix domain
// socket where every accepted connection is one counter agent session,
// authenticated by the peer's SO_PEERCRED uid.
package nodeapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/plexsphere/hwcountd/internal/catalog"
	"github.com/plexsphere/hwcountd/internal/counters"
)

// Server is the local agent API server.
type Server struct {
	cfg         Config
	agent       CounterAgent
	catalog     *catalog.Catalog
	metrics     http.Handler
	metricsPath string
	sessions    *SessionPool
	logger      *slog.Logger
}

// NewServer creates a new Server. Config defaults are applied automatically.
// metrics may be nil to leave the exposition endpoint unrouted.
func NewServer(cfg Config, agent CounterAgent, cat *catalog.Catalog, logger *slog.Logger) *Server {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		agent:    agent,
		catalog:  cat,
		sessions: NewSessionPool(),
		logger:   logger.With("component", "nodeapi"),
	}
}

// SetMetricsHandler routes path to h. Must be called before Start.
func (s *Server) SetMetricsHandler(path string, h http.Handler) {
	s.metricsPath = path
	s.metrics = h
}

// Sessions returns the connection session pool.
func (s *Server) Sessions() *SessionPool { return s.sessions }

// Start initializes and runs the server. It blocks until ctx is cancelled.
// The ready channel, if non-nil, is closed once the socket accepts connections.
func (s *Server) Start(ctx context.Context, ready chan<- struct{}) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	handler := NewHandler(s.agent, s.catalog, s.metrics, s.metricsPath, s.cfg.MaxBodyBytes, s.logger)

	// Remove stale socket.
	os.Remove(s.cfg.SocketPath)

	if dir := filepath.Dir(s.cfg.SocketPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("nodeapi: create socket dir: %w", err)
		}
	}

	ln, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("nodeapi: listen unix %s: %w", s.cfg.SocketPath, err)
	}
	applySocketPermissions(s.cfg.SocketPath, s.cfg.SocketGroup, s.logger)

	srv := &http.Server{
		Handler:     handler.Mux(),
		ConnContext: s.connContext,
		ConnState:   s.connState,
		ErrorLog:    slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	s.logger.Info("server started", "socket", s.cfg.SocketPath)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			s.logger.Error("unix server error", "error", err)
		}
	}()
	if ready != nil {
		close(ready)
	}

	<-ctx.Done()

	s.logger.Info("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown incomplete", "error", err)
		srv.Close()
	}

	os.Remove(s.cfg.SocketPath)
	wg.Wait()

	s.logger.Info("server stopped")
	return ctx.Err()
}

// connContext opens a session for a new connection and delivers the peer
// uid to the agent.
func (s *Server) connContext(ctx context.Context, c net.Conn) context.Context {
	id := s.sessions.Acquire(c)
	ctx = WithSession(ctx, id)

	cred, err := GetPeerCredentials(c)
	if err != nil {
		s.logger.Debug("peer credentials unavailable", "session", id, "error", err)
		return ctx
	}
	uid := strconv.FormatUint(uint64(cred.UID), 10)
	if err := s.agent.SessionAttribute(ctx, id, counters.AttrUserID, uid); err != nil {
		s.logger.Debug("session not privileged", "session", id, "uid", cred.UID, "pid", cred.PID, "error", err)
	}
	return ctx
}

// connState ends the session of a closed or hijacked connection.
func (s *Server) connState(c net.Conn, state http.ConnState) {
	if state != http.StateClosed && state != http.StateHijacked {
		return
	}
	id, ok := s.sessions.Lookup(c)
	if !ok {
		return
	}
	// The id stays reserved until the agent has cleared its record.
	if err := s.agent.SessionEnd(context.Background(), id); err != nil {
		s.logger.Debug("session end failed", "session", id, "error", err)
	}
	s.sessions.Release(c)
}
