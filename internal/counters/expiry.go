package counters

import "time"

// expire disables every counting counter whose finite activation has lapsed
// at now and rebuilds the event set if any did. It reports whether a rebuild
// ran.
func (a *Agent) expire(now time.Time) bool {
	lapsed := 0
	for i := 0; i < a.table.Len(); i++ {
		st := a.table.at(i)
		if st.Counting() && st.Activation.Expired(now) {
			st.Activation = Activation{}
			lapsed++
		}
	}
	if lapsed == 0 {
		return false
	}
	report := a.rebuild(ReasonExpiry, now)
	if err := report.Err(); err != nil {
		a.logger.Warn("expiry rebuild incomplete", "error", err)
	}
	a.logger.Debug("counters expired", "count", lapsed, "active", report.Active)
	return true
}

// setAutoEnable changes the auto-enable duration and re-arms the expiry
// ticker at the new interval.
func (a *Agent) setAutoEnable(ticks uint32) {
	a.autoEnable = ticks
	a.rearm()
	a.logger.Info("auto-enable changed", "auto_enable", ticks)
}
