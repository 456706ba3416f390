package auth

import (
	"errors"
	"testing"
	"time"

	"kasirpos/internal/core"
)

func TestIssueAndValidate(t *testing.T) {
	m := NewManager(time.Hour)
	user := core.User{ID: "u1", Name: "Admin", Role: core.RoleAdmin}

	s, err := m.Issue(user)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Token) != 64 {
		t.Fatalf("token length = %d", len(s.Token))
	}

	got, err := m.Validate(s.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "u1" || got.Role != core.RoleAdmin {
		t.Fatalf("session = %+v", got)
	}

	if _, err := m.Validate("bogus"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("bogus token: %v", err)
	}
}

func TestExpiryAndSweep(t *testing.T) {
	m := NewManager(time.Minute)
	base := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	s, err := m.Issue(core.User{ID: "u1", Name: "Admin", Role: core.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := m.Validate(s.Token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expired session validated: %v", err)
	}
	if n := m.Sweep(); n != 1 {
		t.Fatalf("swept = %d", n)
	}
}

func TestRevoke(t *testing.T) {
	m := NewManager(time.Hour)
	user := core.User{ID: "u1", Name: "Kasir", Role: core.RoleKasir}

	s1, _ := m.Issue(user)
	s2, _ := m.Issue(user)

	m.Revoke(s1.Token)
	if _, err := m.Validate(s1.Token); err == nil {
		t.Fatal("revoked token still valid")
	}
	if _, err := m.Validate(s2.Token); err != nil {
		t.Fatal("second session should survive single revoke")
	}

	m.RevokeUser("u1")
	if _, err := m.Validate(s2.Token); err == nil {
		t.Fatal("RevokeUser left a session")
	}
}
