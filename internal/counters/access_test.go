package counters

import (
	"errors"
	"testing"
)

func TestSessions_Attribute(t *testing.T) {
	tests := []struct {
		name       string
		kind       AttrKind
		value      string
		wantErr    error
		privileged bool
		uid        int
		authed     bool
	}{
		{"root", AttrUserID, "0", nil, true, 0, true},
		{"non-root", AttrUserID, "1000", ErrPermissionDenied, false, 1000, true},
		{"bad uid", AttrUserID, "nobody", ErrBadValue, false, 0, false},
		{"group ignored", AttrGroupID, "0", nil, false, 0, false},
		{"pid ignored", AttrProcessID, "1", nil, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSessions()
			err := s.Attribute(2, tt.kind, tt.value)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Attribute: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Attribute = %v, want %v", err, tt.wantErr)
			}
			if got := s.Privileged(2); got != tt.privileged {
				t.Errorf("Privileged = %v, want %v", got, tt.privileged)
			}
			uid, ok := s.UID(2)
			if ok != tt.authed || uid != tt.uid {
				t.Errorf("UID = (%d, %v), want (%d, %v)", uid, ok, tt.uid, tt.authed)
			}
		})
	}
}

func TestSessions_EndClearsRecord(t *testing.T) {
	s := NewSessions()
	if err := s.Attribute(0, AttrUserID, "0"); err != nil {
		t.Fatalf("Attribute: %v", err)
	}
	s.End(0)
	if s.Privileged(0) {
		t.Error("session still privileged after End")
	}
	if _, ok := s.UID(0); ok {
		t.Error("session still authenticated after End")
	}
	// Ending an id that was never seen is harmless.
	s.End(17)
}

func TestSessions_BadUIDResetsPreviousRecord(t *testing.T) {
	s := NewSessions()
	if err := s.Attribute(1, AttrUserID, "0"); err != nil {
		t.Fatalf("Attribute: %v", err)
	}
	if err := s.Attribute(1, AttrUserID, "x"); !errors.Is(err, ErrBadValue) {
		t.Fatalf("Attribute = %v, want ErrBadValue", err)
	}
	if s.Privileged(1) {
		t.Error("session privileged after a bad uid")
	}
}

func TestSessions_RejectsNegativeID(t *testing.T) {
	s := NewSessions()
	if err := s.Attribute(-1, AttrUserID, "0"); err == nil {
		t.Fatal("Attribute(-1) succeeded")
	}
	if s.Privileged(-1) {
		t.Error("Privileged(-1) = true")
	}
}
