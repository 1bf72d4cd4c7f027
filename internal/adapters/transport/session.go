package transport

import (
	"strings"
	"sync"
)

// Session is the in-memory credential holder shared by a client's services
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession returns a Session holding token
func NewSession(token string) *Session { return &Session{token: strings.TrimSpace(token)} }

// Token returns the current token, "" when logged out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the token; "" logs the session out
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}
