package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hwcountd/internal/packaging"
)

var purge bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the hwcountd systemd service",
	Args:  cobra.NoArgs,
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVar(&purge, "purge", false, "also remove the config and runtime directories")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := packaging.InstallConfig{}
	if cmd.Flags().Changed("config") {
		cfg.ConfigDir = filepath.Dir(cfgFile)
	}
	installer := packaging.NewInstaller(cfg, packaging.NewSystemdController(), packaging.NewRootChecker(), logger)
	if err := installer.Uninstall(purge); err != nil {
		return fmt.Errorf("hwcountd uninstall: %w", err)
	}

	p := paletteFor(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), p.Good.Sprint("hwcountd uninstalled successfully"))
	return nil
}
