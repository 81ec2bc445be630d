package counters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/plexsphere/hwcountd/internal/catalog"
)

// Value is a fetched metric value. Uint holds u64 and u32 values; Str holds
// string values.
type Value struct {
	Type catalog.Type
	Uint uint64
	Str  string
}

// String formats the value the way it is stored.
func (v Value) String() string {
	if v.Type == catalog.TypeString {
		return v.Str
	}
	return strconv.FormatUint(v.Uint, 10)
}

// FetchResult is the outcome for one requested id. Err is set instead of
// Value when the metric has no value.
type FetchResult struct {
	ID    catalog.ID
	Value Value
	Err   error
}

func (a *Agent) fetch(sess SessionID, ids []catalog.ID, now time.Time) (results []FetchResult, err error) {
	defer func() { a.observer.Request("fetch", err) }()

	if !a.sessions.Privileged(sess) {
		return nil, fmt.Errorf("counters: fetch: %w", ErrPermissionDenied)
	}

	a.expire(now)

	// A failed read leaves hardware counters without values; pseudo-metrics
	// are still answered.
	readErr := a.events.Refresh()
	if readErr != nil {
		a.logger.Error("event set read failed", "error", readErr)
	}

	ttl := a.ttl()
	pending := make(map[int]int)
	results = make([]FetchResult, len(ids))
	for n, id := range ids {
		results[n].ID = id
		switch id.Cluster {
		case catalog.ClusterCounter:
			idx := int(id.Item)
			if idx >= a.table.Len() {
				results[n].Err = fmt.Errorf("%w: %s", ErrUnknownCounter, id)
				continue
			}
			st := a.table.at(idx)
			if st.Counting() {
				if readErr != nil {
					results[n].Err = fmt.Errorf("counters: fetch %s: %w", id, readErr)
				} else {
					results[n].Value = Value{Type: catalog.TypeU64, Uint: st.Accumulated + a.events.Value(st.Slot)}
				}
				if st.Activation.Kind == ActiveUntil && ttl > 0 {
					st.Activation.Until = now.Add(ttl)
				}
				continue
			}
			results[n].Err = fmt.Errorf("%w: %s", ErrValueUnavailable, id)
			if ttl == 0 {
				continue
			}
			switch st.Activation.Kind {
			case Disabled:
				st.Activation = Until(now.Add(ttl))
				pending[idx] = n
			case ActiveUntil:
				// Requested but left without a slot by an earlier rebuild. It
				// is kept alive and picked up by the next rebuild.
				st.Activation.Until = now.Add(ttl)
			}
		default:
			results[n].Value, results[n].Err = a.control(id, now)
		}
	}

	if len(pending) > 0 {
		report := a.rebuild(ReasonAutoEnable, now)
		if err := report.StageErr(); err != nil {
			return nil, fmt.Errorf("counters: fetch: auto-enable: %w", err)
		}
		for _, f := range report.Failed {
			if n, ok := pending[f.Index]; ok {
				results[n].Err = fmt.Errorf("%w: %s: %w", ErrValueUnavailable, ids[n], f)
			}
		}
	}
	return results, nil
}

// control returns the value of a pseudo-metric.
func (a *Agent) control(id catalog.ID, now time.Time) (Value, error) {
	str := func(s string) (Value, error) { return Value{Type: catalog.TypeString, Str: s}, nil }
	u32 := func(v uint64) (Value, error) { return Value{Type: catalog.TypeU32, Uint: v}, nil }

	switch id {
	case catalog.IDEnable, catalog.IDReset:
		return str("")
	case catalog.IDDisable:
		if !a.events.Running() {
			return Value{}, fmt.Errorf("%w: %s: event set not running", ErrValueUnavailable, id)
		}
		return str("")
	case catalog.IDStatus:
		return str(a.status(now))
	case catalog.IDAutoEnable:
		return u32(uint64(a.autoEnable))
	case catalog.IDMultiplex:
		if a.events.Multiplex() {
			return u32(1)
		}
		return u32(0)
	case catalog.IDNumCounters:
		return u32(uint64(a.catalog.NumCounters()))
	}
	return Value{}, fmt.Errorf("%w: %s", ErrUnknownCounter, id)
}

// status composes the human readable state of the event set and every
// counting counter, for example
//
//	eventset running, multiplexed; CPU_CYCLES(forever): 1200, CACHE_MISSES(95s): 14
func (a *Agent) status(now time.Time) string {
	var b strings.Builder
	b.WriteString("eventset ")
	switch {
	case a.events.Running():
		b.WriteString("running")
	case a.events.Present():
		b.WriteString("stopped")
	default:
		b.WriteString("absent")
	}
	if a.events.Multiplexed() {
		b.WriteString(", multiplexed")
	}
	b.WriteString("; ")

	listed := 0
	for i := 0; i < a.table.Len(); i++ {
		st := a.table.Get(i)
		if !st.Counting() {
			continue
		}
		def, _ := a.catalog.Counter(i)
		if listed > 0 {
			b.WriteString(", ")
		}
		listed++
		b.WriteString(def.Code)
		if st.Activation.Kind == ActiveForever {
			b.WriteString("(forever)")
		} else {
			remaining := st.Activation.Until.Sub(now) / a.cfg.TickUnit
			if remaining < 0 {
				remaining = 0
			}
			fmt.Fprintf(&b, "(%ds)", int64(remaining))
		}
		fmt.Fprintf(&b, ": %d", st.Accumulated+a.events.Value(st.Slot))
	}
	if listed == 0 {
		b.WriteString("no active counters")
	}
	return b.String()
}
