// Package cmd implements the hwcountd CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hwcountd/internal/nodeapi"
)

// DefaultConfigPath is the config file read by "hwcountd up".
const DefaultConfigPath = "/etc/hwcountd/config.yaml"

var (
	cfgFile    string
	logLevel   string
	socketPath string
	backend    string
	noColor    bool
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("hwcountd version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "hwcountd",
	Short: "hwcountd is the hardware performance counter agent",
	Long: "hwcountd is a local agent that exposes CPU hardware performance counters\n" +
		"as named metrics. Counters are enabled on demand, multiplexed onto the\n" +
		"hardware counter budget, and disabled again when nobody reads them.",
	SilenceUsage: true,
	// No Run function; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error; overrides config)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", nodeapi.DefaultSocketPath, "local API socket path")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "counter backend: perf or simulated (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("hwcountd version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
