package nodeapi

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/plexsphere/hwcountd/internal/catalog"
	"github.com/plexsphere/hwcountd/internal/counters"
	"github.com/plexsphere/hwcountd/internal/perfevent"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBackend returns a simulated backend with the first three generic
// events: CPU_CYCLES, INSTRUCTIONS and CACHE_REFERENCES.
func newTestBackend(t *testing.T) (*perfevent.Simulated, *catalog.Catalog) {
	t.Helper()
	sim := perfevent.NewSimulated(perfevent.SimulatedConfig{
		Events: perfevent.GenericEvents()[:3],
	})
	cat, err := catalog.Discover(sim, discardLogger())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	return sim, cat
}

type attrCall struct {
	sess  counters.SessionID
	kind  counters.AttrKind
	value string
}

// mockAgent records every call and returns canned results.
type mockAgent struct {
	mu            sync.Mutex
	fetchResults  []counters.FetchResult
	fetchErr      error
	storeErr      error
	fetchCalls    [][]catalog.ID
	fetchSessions []counters.SessionID
	storeCalls    [][]counters.StoreValue
	storeSessions []counters.SessionID
	attrs         []attrCall
	ended         []counters.SessionID
}

func (m *mockAgent) Fetch(_ context.Context, sess counters.SessionID, ids []catalog.ID) ([]counters.FetchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls = append(m.fetchCalls, ids)
	m.fetchSessions = append(m.fetchSessions, sess)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.fetchResults, nil
}

func (m *mockAgent) Store(_ context.Context, sess counters.SessionID, values []counters.StoreValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeCalls = append(m.storeCalls, values)
	m.storeSessions = append(m.storeSessions, sess)
	return m.storeErr
}

func (m *mockAgent) SessionAttribute(_ context.Context, sess counters.SessionID, kind counters.AttrKind, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attrs = append(m.attrs, attrCall{sess: sess, kind: kind, value: value})
	return nil
}

func (m *mockAgent) SessionEnd(_ context.Context, sess counters.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = append(m.ended, sess)
	return nil
}

func (m *mockAgent) getFetchCalls() [][]catalog.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]catalog.ID(nil), m.fetchCalls...)
}

func (m *mockAgent) getStoreCalls() [][]counters.StoreValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]counters.StoreValue(nil), m.storeCalls...)
}

func (m *mockAgent) getAttrs() []attrCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]attrCall(nil), m.attrs...)
}

func (m *mockAgent) getEnded() []counters.SessionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]counters.SessionID(nil), m.ended...)
}
