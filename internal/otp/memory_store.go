package otp

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

// NewMemoryStore builds a process-local challenge store. Expiry is enforced by
// the engine reading Challenge.ExpiresAt.
func NewMemoryStore() ChallengeStore {
	return &memoryStore{challenges: make(map[string]Challenge)}
}

func (s *memoryStore) Put(_ context.Context, c Challenge, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.Phone] = c
	return nil
}

func (s *memoryStore) Get(_ context.Context, phone string) (Challenge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[phone]
	return c, ok, nil
}

func (s *memoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, phone)
	return nil
}
