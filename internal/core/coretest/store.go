package coretest

import "sync"

// Session is an in-memory domain.Session
type Session struct {
	mu  sync.RWMutex
	tok string
}

// Token implements domain.Session
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tok
}

// SetToken implements domain.Session
func (s *Session) SetToken(tok string) {
	s.mu.Lock()
	s.tok = tok
	s.mu.Unlock()
}

// TokenStore is an in-memory domain.TokenStore; SaveErr forces Save to fail
type TokenStore struct {
	mu      sync.Mutex
	Token   string
	Saved   bool
	SaveErr error
	LoadErr error
}

// Load implements domain.TokenStore
func (s *TokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return "", s.LoadErr
	}
	return s.Token, nil
}

// Save implements domain.TokenStore
func (s *TokenStore) Save(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Token, s.Saved = tok, true
	return nil
}

// Delete implements domain.TokenStore
func (s *TokenStore) Delete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.Saved
	s.Token, s.Saved = "", false
	return had
}
