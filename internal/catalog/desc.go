package catalog

import (
	"errors"
	"fmt"
)

// Type is the value type of a metric.
type Type string

const (
	TypeU64    Type = "u64"
	TypeU32    Type = "u32"
	TypeString Type = "string"
)

// Semantics describes how successive values relate.
type Semantics string

const (
	SemCounter  Semantics = "counter"
	SemInstant  Semantics = "instant"
	SemDiscrete Semantics = "discrete"
)

// Descriptor is the type, semantics and units of a metric.
type Descriptor struct {
	Type      Type      `json:"type"`
	Semantics Semantics `json:"semantics"`
	Units     string    `json:"units"`
}

// TextKind selects the short or long help text.
type TextKind int

const (
	TextOneLine TextKind = iota
	TextHelp
)

// ErrNoText indicates a metric without help text of the requested kind.
var ErrNoText = errors.New("catalog: no help text")

// ParseTextKind parses "oneline" or "help".
func ParseTextKind(s string) (TextKind, error) {
	switch s {
	case "", "oneline":
		return TextOneLine, nil
	case "help":
		return TextHelp, nil
	}
	return 0, fmt.Errorf("catalog: unknown text kind %q", s)
}

var (
	counterDesc    = Descriptor{Type: TypeU64, Semantics: SemCounter, Units: "count"}
	stringDesc     = Descriptor{Type: TypeString, Semantics: SemInstant}
	autoEnableDesc = Descriptor{Type: TypeU32, Semantics: SemDiscrete, Units: "sec"}
	multiplexDesc  = Descriptor{Type: TypeU32, Semantics: SemDiscrete}
	numCountDesc   = Descriptor{Type: TypeU32, Semantics: SemDiscrete, Units: "count"}
)

type helpText struct {
	oneline string
	help    string
}

var fixedHelp = map[ID]helpText{
	IDEnable: {
		"enable hardware counters",
		"Store a space or comma separated list of counter names to count them\n" +
			"until disabled. Reads return an empty string.",
	},
	IDReset: {
		"disable every hardware counter",
		"Store any value to stop counting every counter. Accumulated values are kept.",
	},
	IDDisable: {
		"disable hardware counters",
		"Store a space or comma separated list of counter names to stop counting them.",
	},
	IDStatus: {
		"event set status",
		"State of the hardware event set and every counting counter with its\n" +
			"remaining activation time in seconds (or forever) and current value.",
	},
	IDAutoEnable: {
		"auto-enable duration in seconds",
		"Fetching a disabled counter enables it for this many seconds; fetching an\n" +
			"enabled counter extends it. The expiry scan runs at the same interval.\n" +
			"Zero disables auto-enable and the expiry scan.",
	},
	IDMultiplex: {
		"counter multiplexing",
		"Non-zero lets the kernel time-slice more counters than the hardware has,\n" +
			"at reduced accuracy. Storing a value rebuilds the event set.",
	},
	IDNumCounters: {
		"number of physical hardware counters",
		"Number of counters the hardware can count at once without multiplexing.",
	},
}

// Describe returns the descriptor of id.
func (c *Catalog) Describe(id ID) (Descriptor, error) {
	if !c.Known(id) {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	switch id {
	case IDAutoEnable:
		return autoEnableDesc, nil
	case IDMultiplex:
		return multiplexDesc, nil
	case IDNumCounters:
		return numCountDesc, nil
	}
	if id.Cluster == ClusterCounter {
		return counterDesc, nil
	}
	return stringDesc, nil
}

// Text returns the help text of id.
func (c *Catalog) Text(id ID, kind TextKind) (string, error) {
	if !c.Known(id) {
		return "", fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	var oneline, help string
	if id.Cluster == ClusterCounter {
		def := c.counters[id.Item]
		oneline, help = def.ShortDescription, def.LongDescription
	} else {
		h := fixedHelp[id]
		oneline, help = h.oneline, h.help
	}
	text := oneline
	if kind == TextHelp {
		text = help
	}
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, id)
	}
	return text, nil
}
