package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hwcountd/internal/packaging"
)

var (
	installEnable      bool
	installSocketGroup string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install hwcountd as a systemd service",
	Long: "Install hwcountd as a systemd service. Copies the running binary,\n" +
		"writes a default config unless one exists, and writes the unit file.",
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installEnable, "enable", false, "enable the service to start on boot")
	installCmd.Flags().StringVar(&installSocketGroup, "socket-group", packaging.DefaultSocketGroup, "group granted access to the local API socket")
	rootCmd.AddCommand(installCmd)
}

// installConfig builds the install configuration from the command flags.
func installConfig(cmd *cobra.Command) packaging.InstallConfig {
	cfg := packaging.InstallConfig{
		Backend:     backend,
		SocketGroup: installSocketGroup,
		Enable:      installEnable,
	}
	if cmd.Flags().Changed("config") {
		cfg.ConfigDir = filepath.Dir(cfgFile)
	}
	if cmd.Flags().Changed("socket") {
		cfg.RunDir = filepath.Dir(socketPath)
	}
	return cfg
}

func runInstall(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	installer := packaging.NewInstaller(installConfig(cmd), packaging.NewSystemdController(), packaging.NewRootChecker(), logger)
	if err := installer.Install(); err != nil {
		return fmt.Errorf("hwcountd install: %w", err)
	}

	p := paletteFor(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), p.Good.Sprint("hwcountd installed successfully"))
	return nil
}
