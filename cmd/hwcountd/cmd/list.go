package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hwcountd/internal/nodeapi"
)

var listCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List metric names",
	Long: "List the children of a metric namespace node. Without a prefix the\n" +
		"top of the hwcount namespace is listed. Non-leaf children end in \".\".",
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	path := "/v1/metrics"
	if len(args) == 1 {
		path += "?prefix=" + url.QueryEscape(args[0])
	}
	resp, err := socketGet(socketPath, path)
	if err != nil {
		return fmt.Errorf("hwcountd list: %w", err)
	}
	var out nodeapi.ChildrenResponse
	if err := decodeResponse(resp, &out); err != nil {
		return fmt.Errorf("hwcountd list: %w", err)
	}

	w := cmd.OutOrStdout()
	p := paletteFor(w)
	for _, c := range out.Children {
		name := out.Prefix + "." + c.Name
		if c.Leaf {
			fmt.Fprintln(w, p.Name.Sprint(name))
		} else {
			fmt.Fprintln(w, p.Heading.Sprint(name+"."))
		}
	}
	return nil
}
