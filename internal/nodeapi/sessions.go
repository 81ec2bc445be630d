package nodeapi

import (
	"context"
	"net"
	"sync"

	"github.com/plexsphere/hwcountd/internal/counters"
)

// NoSession is the session of a request that did not arrive on a tracked
// connection. It is never authenticated.
const NoSession counters.SessionID = -1

// SessionPool maps live connections to dense session ids. Ids are reused
// after the connection closes, smallest first.
type SessionPool struct {
	mu    sync.Mutex
	inUse []bool
	conns map[net.Conn]counters.SessionID
}

// NewSessionPool creates an empty pool.
func NewSessionPool() *SessionPool {
	return &SessionPool{conns: make(map[net.Conn]counters.SessionID)}
}

// Acquire assigns the smallest free id to c. Acquiring a tracked connection
// again returns its existing id.
func (p *SessionPool) Acquire(c net.Conn) counters.SessionID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.conns[c]; ok {
		return id
	}
	id := -1
	for i, used := range p.inUse {
		if !used {
			id = i
			break
		}
	}
	if id < 0 {
		id = len(p.inUse)
		p.inUse = append(p.inUse, false)
	}
	p.inUse[id] = true
	p.conns[c] = counters.SessionID(id)
	return counters.SessionID(id)
}

// Lookup returns the id of c.
func (p *SessionPool) Lookup(c net.Conn) (counters.SessionID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.conns[c]
	return id, ok
}

// Release frees the id of c. It reports false if c was not tracked.
func (p *SessionPool) Release(c net.Conn) (counters.SessionID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.conns[c]
	if !ok {
		return NoSession, false
	}
	delete(p.conns, c)
	p.inUse[id] = false
	return id, true
}

// Active returns the number of tracked connections.
func (p *SessionPool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

type sessionKey struct{}

// WithSession returns a context carrying the session id.
func WithSession(ctx context.Context, id counters.SessionID) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFromContext returns the session id stored in ctx, or NoSession.
func SessionFromContext(ctx context.Context) counters.SessionID {
	if id, ok := ctx.Value(sessionKey{}).(counters.SessionID); ok {
		return id
	}
	return NoSession
}
