package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Cluster groups metric identities by kind.
type Cluster uint8

const (
	// ClusterCounter holds one metric per hardware counter.
	ClusterCounter Cluster = 0
	// ClusterControl holds the control knobs and the status line.
	ClusterControl Cluster = 1
	// ClusterAvailable describes the hardware.
	ClusterAvailable Cluster = 2
)

// ID identifies any metric served by the agent.
type ID struct {
	Cluster Cluster
	Item    uint32
}

// Control and hardware description metrics.
var (
	IDEnable      = ID{ClusterControl, 0}
	IDReset       = ID{ClusterControl, 1}
	IDDisable     = ID{ClusterControl, 2}
	IDStatus      = ID{ClusterControl, 3}
	IDAutoEnable  = ID{ClusterControl, 4}
	IDMultiplex   = ID{ClusterControl, 5}
	IDNumCounters = ID{ClusterAvailable, 0}
)

// CounterID returns the metric identity of hardware counter i.
func CounterID(i int) ID { return ID{ClusterCounter, uint32(i)} }

// String returns the "cluster.item" form.
func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.Cluster, id.Item)
}

// ParseID parses the "cluster.item" form.
func ParseID(s string) (ID, error) {
	cluster, item, ok := strings.Cut(s, ".")
	if !ok {
		return ID{}, fmt.Errorf("catalog: parse id %q: want cluster.item", s)
	}
	c, err := strconv.ParseUint(cluster, 10, 8)
	if err != nil {
		return ID{}, fmt.Errorf("catalog: parse id %q: %w", s, err)
	}
	i, err := strconv.ParseUint(item, 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("catalog: parse id %q: %w", s, err)
	}
	return ID{Cluster: Cluster(c), Item: uint32(i)}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
