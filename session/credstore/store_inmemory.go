package credstore

import (
	"sync"
	"time"

	"github.com/planforge/go-session-client/users"
)

// InMemoryStore is an in-memory implementation of Store, used in tests and
// for ephemeral sessions that must not outlive the process.
type InMemoryStore struct {
	mu sync.RWMutex
	r  record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) SaveCredentials(token string, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.r.Token = token
	if user != nil {
		u := *user
		user = &u
	}
	s.r.User = user
	return nil
}

func (s *InMemoryStore) Credentials() (string, *users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r.Token == "" {
		return "", nil, NoCredentialsErr
	}
	user := s.r.User
	if user != nil {
		u := *user
		user = &u
	}
	return s.r.Token, user, nil
}

func (s *InMemoryStore) DeleteCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.r.Token = ""
	s.r.User = nil
	return nil
}

func (s *InMemoryStore) SaveRemember(expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.r.RememberMe = true
	s.r.SessionExpiry = &expiry
	return nil
}

func (s *InMemoryStore) Remember() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.r.RememberMe || s.r.SessionExpiry == nil {
		return time.Time{}, NoRememberErr
	}
	return *s.r.SessionExpiry, nil
}

func (s *InMemoryStore) SaveDeductionMarker(day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.r.LastDailyDeduction = day
	return nil
}

func (s *InMemoryStore) DeductionMarker() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r.LastDailyDeduction == "" {
		return "", NoMarkerErr
	}
	return s.r.LastDailyDeduction, nil
}

func (s *InMemoryStore) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.r = record{}
	return nil
}
