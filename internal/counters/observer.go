package counters

// Observer receives agent events for instrumentation. Implementations are
// called from the agent loop and must not block.
type Observer interface {
	// Rebuilt is called after every event set rebuild.
	Rebuilt(report RebuildReport)

	// Request is called after every fetch or store. op is "fetch" or the
	// name of the stored control; err is the call's result.
	Request(op string, err error)
}

type nopObserver struct{}

func (nopObserver) Rebuilt(RebuildReport)  {}
func (nopObserver) Request(string, error) {}
