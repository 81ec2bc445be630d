//go:build !linux

package nodeapi

import (
	"errors"
	"log/slog"
	"net"
)

// PeerCredentials holds the peer credentials of a Unix socket connection.
type PeerCredentials struct {
	PID uint32
	UID uint32
	GID uint32
}

var errNoPeerCred = errors.New("nodeapi: peercred: SO_PEERCRED not supported on this platform")

// GetPeerCredentials always fails on non-Linux platforms, leaving every
// session unprivileged.
func GetPeerCredentials(_ net.Conn) (*PeerCredentials, error) {
	return nil, errNoPeerCred
}

// applySocketPermissions is a no-op on non-Linux platforms.
func applySocketPermissions(_, _ string, _ *slog.Logger) {}
