//go:build linux

package nodeapi

import (
	"log/slog"
)

// applySocketPermissions sets socket ownership and permissions on Linux.
func applySocketPermissions(socketPath, group string, logger *slog.Logger) {
	if err := SetSocketPermissions(socketPath, group, logger); err != nil {
		logger.Warn("failed to set socket permissions", "error", err)
	}
}
