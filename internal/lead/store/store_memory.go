package store

import (
	"context"
	"sync"

	"landing/internal/lead/models"
)

// InMemoryStore keeps leads in process memory. Used by tests and LEAD_STORE=memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	leads []*models.Lead
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *lead
	// newest first
	s.leads = append([]*models.Lead{&copied}, s.leads...)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, limit int) ([]*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := clampLimit(limit, len(s.leads))
	out := make([]*models.Lead, 0, n)
	for _, l := range s.leads[:n] {
		copied := *l
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads), nil
}
