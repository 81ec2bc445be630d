package packaging

import (
	"fmt"
)

// GenerateUnitFile produces a complete systemd unit file for the hwcountd service.
// It calls cfg.ApplyDefaults() to fill in zero-valued fields before generating the output.
func GenerateUnitFile(cfg InstallConfig) string {
	cfg.ApplyDefaults()

	return fmt.Sprintf(`[Unit]
Description=hwcountd hardware performance counter agent
After=local-fs.target
StartLimitBurst=5
StartLimitIntervalSec=60

[Service]
Type=simple
ExecStart=%s up --config %s
Restart=always
RestartSec=5s
LimitNOFILE=65536
AmbientCapabilities=CAP_PERFMON CAP_SYS_ADMIN CAP_CHOWN
CapabilityBoundingSet=CAP_PERFMON CAP_SYS_ADMIN CAP_CHOWN
ProtectSystem=full
ProtectHome=true
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, cfg.BinaryPath, cfg.ConfigPath(), cfg.RunDir)
}
