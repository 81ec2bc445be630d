package counters

import (
	"fmt"
	"strconv"
)

// SessionID identifies one client session. Transports may reuse the id of
// a session that has ended.
type SessionID int

// AttrKind is the kind of a session attribute delivered by the transport.
type AttrKind int

const (
	// AttrUserID carries the numeric uid of the peer.
	AttrUserID AttrKind = iota + 1
	// AttrGroupID carries the numeric gid of the peer.
	AttrGroupID
	// AttrProcessID carries the pid of the peer.
	AttrProcessID
)

type session struct {
	authenticated bool
	uid           int
}

// Sessions is the access control table, indexed by session id. It grows to
// accommodate the largest id seen and is never shrunk.
type Sessions struct {
	table []session
}

// NewSessions creates an empty access control table.
func NewSessions() *Sessions { return &Sessions{} }

func (s *Sessions) grow(id SessionID) {
	for len(s.table) <= int(id) {
		s.table = append(s.table, session{})
	}
}

// Attribute records an attribute for a session. Only AttrUserID affects
// access; other kinds are accepted and ignored. A non-root uid is recorded
// and also reported as ErrPermissionDenied.
func (s *Sessions) Attribute(id SessionID, kind AttrKind, value string) error {
	if id < 0 {
		return fmt.Errorf("counters: session %d: invalid id", id)
	}
	s.grow(id)
	if kind != AttrUserID {
		return nil
	}
	uid, err := strconv.Atoi(value)
	if err != nil {
		s.table[id] = session{}
		return fmt.Errorf("counters: session %d: uid %q: %w", id, value, ErrBadValue)
	}
	s.table[id] = session{authenticated: true, uid: uid}
	if uid != 0 {
		return fmt.Errorf("counters: session %d: uid %d: %w", id, uid, ErrPermissionDenied)
	}
	return nil
}

// End clears the record so that a session reusing the id must authenticate
// again.
func (s *Sessions) End(id SessionID) {
	if id >= 0 && int(id) < len(s.table) {
		s.table[id] = session{}
	}
}

// Privileged reports whether the session authenticated as uid 0.
func (s *Sessions) Privileged(id SessionID) bool {
	if id < 0 || int(id) >= len(s.table) {
		return false
	}
	r := s.table[id]
	return r.authenticated && r.uid == 0
}

// UID returns the authenticated uid of the session.
func (s *Sessions) UID(id SessionID) (int, bool) {
	if id < 0 || int(id) >= len(s.table) || !s.table[id].authenticated {
		return 0, false
	}
	return s.table[id].uid, true
}
