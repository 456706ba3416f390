// Package auth issues and validates bearer session tokens.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"kasirpos/internal/core"
)

var ErrInvalidSession = errors.New("invalid or expired session")

// Session binds a token to a user for a limited time.
type Session struct {
	Token     string
	UserID    string
	UserName  string
	Role      core.Role
	ExpiresAt time.Time
}

// Manager keeps active sessions in memory. Restarting the server logs
// everyone out, which is acceptable for a single-store deployment.
type Manager struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
	now      func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Issue creates a session for the user and returns its token.
func (m *Manager) Issue(user core.User) (Session, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Session{}, err
	}

	s := Session{
		Token:     hex.EncodeToString(buf),
		UserID:    user.ID,
		UserName:  user.Name,
		Role:      user.Role,
		ExpiresAt: m.now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s, nil
}

// Validate resolves a token to its session.
func (m *Manager) Validate(token string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok || m.now().After(s.ExpiresAt) {
		return Session{}, ErrInvalidSession
	}
	return s, nil
}

// Revoke drops the session for a token. Revoking an unknown token is a
// no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// RevokeUser drops every session belonging to the user.
func (m *Manager) RevokeUser(userID string) {
	m.mu.Lock()
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps expired sessions on the given interval until stop
// is closed.
func (m *Manager) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-stop:
				return
			}
		}
	}()
}
