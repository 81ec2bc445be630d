package nodeapi

import (
	"context"
	"net"
	"testing"

	"github.com/plexsphere/hwcountd/internal/counters"
)

func newPipeConn(t *testing.T) net.Conn {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a
}

func TestSessionPool_SmallestFreeReused(t *testing.T) {
	p := NewSessionPool()
	c0, c1, c2 := newPipeConn(t), newPipeConn(t), newPipeConn(t)

	if id := p.Acquire(c0); id != 0 {
		t.Fatalf("Acquire(c0) = %d, want 0", id)
	}
	if id := p.Acquire(c1); id != 1 {
		t.Fatalf("Acquire(c1) = %d, want 1", id)
	}
	if id, ok := p.Release(c0); !ok || id != 0 {
		t.Fatalf("Release(c0) = %d, %v, want 0, true", id, ok)
	}
	if id := p.Acquire(c2); id != 0 {
		t.Errorf("Acquire(c2) = %d, want reused id 0", id)
	}
	if got := p.Active(); got != 2 {
		t.Errorf("Active() = %d, want 2", got)
	}
}

func TestSessionPool_AcquireTwiceReturnsSameID(t *testing.T) {
	p := NewSessionPool()
	c := newPipeConn(t)
	first := p.Acquire(c)
	if second := p.Acquire(c); second != first {
		t.Errorf("second Acquire = %d, want %d", second, first)
	}
	if got := p.Active(); got != 1 {
		t.Errorf("Active() = %d, want 1", got)
	}
}

func TestSessionPool_LookupAndReleaseUntracked(t *testing.T) {
	p := NewSessionPool()
	c := newPipeConn(t)

	if _, ok := p.Lookup(c); ok {
		t.Error("Lookup of untracked conn reported ok")
	}
	if id, ok := p.Release(c); ok || id != NoSession {
		t.Errorf("Release of untracked conn = %d, %v, want %d, false", id, ok, NoSession)
	}

	want := p.Acquire(c)
	if id, ok := p.Lookup(c); !ok || id != want {
		t.Errorf("Lookup = %d, %v, want %d, true", id, ok, want)
	}
}

func TestSessionFromContext(t *testing.T) {
	if got := SessionFromContext(context.Background()); got != NoSession {
		t.Errorf("SessionFromContext(empty) = %d, want %d", got, NoSession)
	}
	ctx := WithSession(context.Background(), counters.SessionID(7))
	if got := SessionFromContext(ctx); got != 7 {
		t.Errorf("SessionFromContext = %d, want 7", got)
	}
}
