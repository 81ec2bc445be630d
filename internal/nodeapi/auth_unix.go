//go:build linux

package nodeapi

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// PeerCredentials holds the peer credentials extracted from a Unix socket connection.
type PeerCredentials struct {
	PID uint32
	UID uint32
	GID uint32
}

// GetPeerCredentials extracts peer credentials from a Unix socket connection
// using the SO_PEERCRED socket option. Returns an error if the connection
// is not a Unix socket or the credentials cannot be retrieved.
func GetPeerCredentials(conn net.Conn) (*PeerCredentials, error) {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("nodeapi: peercred: not a Unix socket connection")
	}
	raw, err := unixConn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("nodeapi: peercred: get syscall conn: %w", err)
	}
	var cred *unix.Ucred
	var credErr error
	err = raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil {
		return nil, fmt.Errorf("nodeapi: peercred: control: %w", err)
	}
	if credErr != nil {
		return nil, fmt.Errorf("nodeapi: peercred: getsockopt SO_PEERCRED: %w", credErr)
	}
	return &PeerCredentials{
		PID: uint32(cred.Pid),
		UID: uint32(cred.Uid),
		GID: uint32(cred.Gid),
	}, nil
}

// SetSocketPermissions restricts the socket to root and the given group with
// mode 0660. When the group does not exist the socket is opened to everyone
// with mode 0666; privileged operations are still gated on the peer uid.
func SetSocketPermissions(socketPath, group string, logger *slog.Logger) error {
	grp, err := user.LookupGroup(group)
	if err != nil {
		logger.Warn("socket group not found, using permissive socket permissions",
			"group", group,
			"error", err,
		)
		return os.Chmod(socketPath, 0666)
	}
	gid, err := strconv.Atoi(grp.Gid)
	if err != nil {
		return fmt.Errorf("nodeapi: socket: parse gid %q: %w", grp.Gid, err)
	}
	if err := os.Chown(socketPath, 0, gid); err != nil {
		return fmt.Errorf("nodeapi: socket: chown: %w", err)
	}
	if err := os.Chmod(socketPath, 0660); err != nil {
		return fmt.Errorf("nodeapi: socket: chmod: %w", err)
	}
	return nil
}
