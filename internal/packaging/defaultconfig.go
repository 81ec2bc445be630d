package packaging

import "fmt"

// GenerateDefaultConfig produces the default config.yaml for hwcountd.
// It calls cfg.ApplyDefaults() before generating the output.
func GenerateDefaultConfig(cfg InstallConfig) string {
	cfg.ApplyDefaults()

	return fmt.Sprintf(`# hwcountd configuration
# Options left out take their built-in defaults.

log_level: info
backend: %s

counters:
  # Seconds a counter stays enabled after a fetch auto-enables it. 0 disables auto-enable.
  auto_enable: 120
  multiplex: true

node_api:
  socket_path: %s
  socket_group: %s

metrics:
  enabled: true
  path: /metrics

heartbeat:
  interval: 1m
`, cfg.Backend, cfg.SocketPath(), cfg.SocketGroup)
}
