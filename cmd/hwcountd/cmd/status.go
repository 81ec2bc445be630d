package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plexsphere/hwcountd/internal/catalog"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show counter agent status",
	Long: "Connect to the local agent via Unix socket and display the event set\n" +
		"state, the control settings, and every counting counter.",
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusNames are the metrics the status command fetches, in display order.
var statusNames = []string{
	catalog.Namespace + ".control.status",
	catalog.Namespace + ".available.num_counters",
	catalog.Namespace + ".control.auto_enable",
	catalog.Namespace + ".control.multiplex",
}

// statusLine is the parsed form of the control.status metric.
type statusLine struct {
	State       string
	Multiplexed bool
	Counters    []statusCounter
}

type statusCounter struct {
	Code      string
	Remaining string
	Value     string
}

// parseStatus parses "eventset <state>[, multiplexed]; <list>" where the
// list is "no active counters" or "CODE(ttl): value, ...".
func parseStatus(s string) (statusLine, error) {
	head, list, ok := strings.Cut(s, "; ")
	if !ok || !strings.HasPrefix(head, "eventset ") {
		return statusLine{}, fmt.Errorf("malformed status %q", s)
	}
	var out statusLine
	out.State, _, out.Multiplexed = strings.Cut(strings.TrimPrefix(head, "eventset "), ", multiplexed")
	if list == "no active counters" {
		return out, nil
	}
	for _, item := range strings.Split(list, ", ") {
		code, rest, ok := strings.Cut(item, "(")
		if !ok {
			return statusLine{}, fmt.Errorf("malformed status entry %q", item)
		}
		remaining, value, ok := strings.Cut(rest, "): ")
		if !ok {
			return statusLine{}, fmt.Errorf("malformed status entry %q", item)
		}
		out.Counters = append(out.Counters, statusCounter{Code: code, Remaining: remaining, Value: value})
	}
	return out, nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	results, err := fetchNames(statusNames)
	if err != nil {
		return fmt.Errorf("hwcountd status: %w", err)
	}
	values := make(map[string]string, len(results))
	for _, r := range results {
		if r.Error != "" {
			values[r.Name] = "unavailable"
			continue
		}
		values[r.Name] = fmt.Sprint(r.Value)
	}

	st, err := parseStatus(values[statusNames[0]])
	if err != nil {
		return fmt.Errorf("hwcountd status: %w", err)
	}

	w := cmd.OutOrStdout()
	p := paletteFor(w)

	state := p.Good.Sprint(st.State)
	if st.State != "running" {
		state = p.Warn.Sprint(st.State)
	}
	multiplex := "off"
	if values[statusNames[3]] == "1" {
		multiplex = "on"
	}
	fmt.Fprintf(w, "Event set:         %s\n", state)
	fmt.Fprintf(w, "Physical counters: %s\n", values[statusNames[1]])
	fmt.Fprintf(w, "Auto-enable:       %ss\n", values[statusNames[2]])
	fmt.Fprintf(w, "Multiplex:         %s\n", multiplex)
	fmt.Fprintf(w, "Active counters:   %d\n", len(st.Counters))

	if len(st.Counters) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, p.Heading.Sprint("COUNTER")+"\t"+p.Heading.Sprint("ACTIVE")+"\t"+p.Heading.Sprint("VALUE"))
	for _, c := range st.Counters {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name.Sprint(c.Code), c.Remaining, p.Value.Sprint(c.Value))
	}
	return tw.Flush()
}
