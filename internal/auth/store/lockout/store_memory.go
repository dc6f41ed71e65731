package lockout

import (
	"context"
	"sync"
	"time"

	"lifeline/internal/auth/models"
)

// InMemoryStore keeps login failure counters in process. Used when no
// database is configured.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.LoginFailures
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.LoginFailures)}
}

// Get returns nil without error when key has no failures.
func (s *InMemoryStore) Get(_ context.Context, key string) (*models.LoginFailures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return clone(record), nil
}

func (s *InMemoryStore) RecordFailure(_ context.Context, key string, now time.Time, window time.Duration) (*models.LoginFailures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key]
	if !ok || record.StaleAt(now, window) {
		record = &models.LoginFailures{Key: key}
		s.records[key] = record
	}
	record.FailureCount++
	record.LastFailureAt = now
	return clone(record), nil
}

func (s *InMemoryStore) Lock(_ context.Context, key string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[key]; ok {
		record.LockedUntil = &until
	}
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func clone(r *models.LoginFailures) *models.LoginFailures {
	out := *r
	if r.LockedUntil != nil {
		until := *r.LockedUntil
		out.LockedUntil = &until
	}
	return &out
}
