package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hwcountd/internal/catalog"
)

var enableCmd = &cobra.Command{
	Use:   "enable CODE...",
	Short: "Enable counters until disabled",
	Long:  "Enable one or more counters by code (for example CPU_CYCLES). Requires root.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runControlList(catalog.Namespace+".control.enable", "enable"),
}

var disableCmd = &cobra.Command{
	Use:   "disable CODE...",
	Short: "Disable counters",
	Long:  "Disable one or more counters by code. Accumulated values are kept. Requires root.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runControlList(catalog.Namespace+".control.disable", "disable"),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Disable every counter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := storeControl(catalog.Namespace+".control.reset", "1"); err != nil {
			return fmt.Errorf("hwcountd reset: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), paletteFor(cmd.OutOrStdout()).Good.Sprint("all counters disabled"))
		return nil
	},
}

// settable lists the controls accepted by "set".
var settable = map[string]string{
	"auto_enable": catalog.Namespace + ".control.auto_enable",
	"multiplex":   catalog.Namespace + ".control.multiplex",
}

var setCmd = &cobra.Command{
	Use:   "set auto_enable|multiplex VALUE",
	Short: "Change a control setting",
	Long: "Set the auto-enable duration in seconds (0 disables auto-enable and\n" +
		"expiry) or turn multiplexing on (1) or off (0). Requires root.",
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(setCmd)
}

func runControlList(control, verb string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := storeControl(control, strings.Join(args, ",")); err != nil {
			return fmt.Errorf("hwcountd %s: %w", verb, err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%sd: %s\n", verb, paletteFor(w).Name.Sprint(strings.Join(args, " ")))
		return nil
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	name, ok := settable[args[0]]
	if !ok {
		return fmt.Errorf("hwcountd set: unknown setting %q (want auto_enable or multiplex)", args[0])
	}
	if err := storeControl(name, args[1]); err != nil {
		return fmt.Errorf("hwcountd set: %w", err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s = %s\n", paletteFor(w).Name.Sprint(args[0]), args[1])
	return nil
}
