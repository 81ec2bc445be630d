package counters

import "sync"

type requestCall struct {
	op  string
	err error
}

// mockObserver records every observer callback.
type mockObserver struct {
	mu       sync.Mutex
	reports  []RebuildReport
	requests []requestCall
}

func (m *mockObserver) Rebuilt(report RebuildReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
}

func (m *mockObserver) Request(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, requestCall{op: op, err: err})
}

func (m *mockObserver) rebuildCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

func (m *mockObserver) lastReport() RebuildReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == 0 {
		return RebuildReport{}
	}
	return m.reports[len(m.reports)-1]
}

func (m *mockObserver) getRequests() []requestCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]requestCall, len(m.requests))
	copy(out, m.requests)
	return out
}
