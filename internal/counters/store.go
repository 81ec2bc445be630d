package counters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/plexsphere/hwcountd/internal/catalog"
)

// StoreValue is one control write. Values are strings on the wire.
type StoreValue struct {
	ID    catalog.ID
	Value string
}

// storeOps names the writable controls.
var storeOps = map[catalog.ID]string{
	catalog.IDEnable:     "enable",
	catalog.IDReset:      "reset",
	catalog.IDDisable:    "disable",
	catalog.IDAutoEnable: "auto_enable",
	catalog.IDMultiplex:  "multiplex",
}

func (a *Agent) store(sess SessionID, values []StoreValue, now time.Time) error {
	if !a.sessions.Privileged(sess) {
		err := fmt.Errorf("counters: store: %w", ErrPermissionDenied)
		a.observer.Request("store", err)
		return err
	}
	for _, v := range values {
		if _, ok := storeOps[v.ID]; !ok {
			err := fmt.Errorf("counters: store %s: read-only metric: %w", v.ID, ErrPermissionDenied)
			if !a.catalog.Known(v.ID) {
				err = fmt.Errorf("counters: store %s: %w", v.ID, ErrUnknownCounter)
			}
			a.observer.Request("store", err)
			return err
		}
	}

	for _, v := range values {
		op := storeOps[v.ID]
		err := a.storeOne(v, now)
		a.observer.Request(op, err)
		if err != nil {
			return fmt.Errorf("counters: store %s: %w", op, err)
		}
	}
	return nil
}

func (a *Agent) storeOne(v StoreValue, now time.Time) error {
	switch v.ID {
	case catalog.IDEnable:
		return a.setActivation(v.Value, Forever(), ReasonEnable, now)
	case catalog.IDDisable:
		return a.setActivation(v.Value, Activation{}, ReasonDisable, now)
	case catalog.IDReset:
		for i := 0; i < a.table.Len(); i++ {
			a.table.at(i).Activation = Activation{}
		}
		return a.rebuild(ReasonReset, now).Err()
	case catalog.IDAutoEnable:
		ticks, err := parseU32(v.Value)
		if err != nil {
			return err
		}
		a.setAutoEnable(ticks)
		return nil
	case catalog.IDMultiplex:
		flag, err := parseU32(v.Value)
		if err != nil {
			return err
		}
		a.events.SetMultiplex(flag != 0)
		return a.rebuild(ReasonMultiplex, now).Err()
	}
	return fmt.Errorf("%w: %s", ErrUnknownCounter, v.ID)
}

// setActivation applies act to every named counter and rebuilds. Names that
// match no counter are reported after the rebuild.
func (a *Agent) setActivation(list string, act Activation, reason Reason, now time.Time) error {
	var unmatched []string
	for _, name := range splitNames(list) {
		i, ok := a.catalog.FindCounter(name)
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}
		a.table.at(i).Activation = act
	}
	rebuildErr := a.rebuild(reason, now).Err()
	if len(unmatched) > 0 {
		return errors.Join(rebuildErr, fmt.Errorf("%w: %s", ErrPartialValidation, strings.Join(unmatched, ", ")))
	}
	return rebuildErr
}

// splitNames splits a counter list on spaces and commas.
func splitNames(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func parseU32(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an unsigned 32-bit integer", ErrBadValue, s)
	}
	return uint32(v), nil
}
