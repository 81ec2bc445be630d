package cmd

import (
	"fmt"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hwcountd/internal/nodeapi"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch NAME...",
	Short: "Fetch metric values",
	Long: "Fetch one or more metrics by name. A bare counter code such as\n" +
		"CPU_CYCLES stands for hwcount.system.CPU_CYCLES. Fetching a disabled\n" +
		"counter enables it for the auto-enable duration; its value is\n" +
		"available from the next fetch on.",
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

var describeCmd = &cobra.Command{
	Use:   "describe NAME",
	Short: "Show a metric's type, units and help text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(describeCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = metricName(a)
	}
	results, err := fetchNames(names)
	if err != nil {
		return fmt.Errorf("hwcountd fetch: %w", err)
	}

	w := cmd.OutOrStdout()
	p := paletteFor(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			fmt.Fprintf(tw, "%s\t%s\n", p.Name.Sprint(r.Name), p.Error.Sprint(r.Error))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", p.Name.Sprint(r.Name), p.Value.Sprint(r.Value))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed == len(results) {
		return fmt.Errorf("hwcountd fetch: no values available")
	}
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	name := metricName(args[0])
	resp, err := socketGet(socketPath, "/v1/metrics/"+url.PathEscape(name))
	if err != nil {
		return fmt.Errorf("hwcountd describe: %w", err)
	}
	var info nodeapi.MetricInfo
	if err := decodeResponse(resp, &info); err != nil {
		return fmt.Errorf("hwcountd describe: %w", err)
	}

	w := cmd.OutOrStdout()
	p := paletteFor(w)
	fmt.Fprintf(w, "%s (%s)\n", p.Name.Sprint(info.Name), info.ID)
	fmt.Fprintf(w, "  type:      %s\n", info.Descriptor.Type)
	fmt.Fprintf(w, "  semantics: %s\n", info.Descriptor.Semantics)
	if info.Descriptor.Units != "" {
		fmt.Fprintf(w, "  units:     %s\n", info.Descriptor.Units)
	}
	if info.OneLine != "" {
		fmt.Fprintf(w, "  %s\n", info.OneLine)
	}

	resp, err = socketGet(socketPath, "/v1/text/"+info.ID.String()+"?kind=help")
	if err != nil {
		return fmt.Errorf("hwcountd describe: %w", err)
	}
	var text nodeapi.TextResponse
	if err := decodeResponse(resp, &text); err != nil {
		// Not every metric has long help.
		return nil
	}
	fmt.Fprintf(w, "\n%s\n", text.Text)
	return nil
}
