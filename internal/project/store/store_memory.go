// Package store holds project listings. MongoStore is the production
// backend; InMemoryStore backs tests and local runs without MONGO_URI.
package store

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"landing/internal/project/models"
	"landing/pkg/platform/sentinel"
)

// InMemoryStore keeps projects in memory. IDs use the same hex ObjectID
// format as MongoStore so URLs look identical across backends.
type InMemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
	seq      map[string]int
	next     int
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		projects: make(map[string]*models.Project),
		seq:      make(map[string]int),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = bson.NewObjectID().Hex()
	s.projects[p.ID] = clone(p)
	s.seq[p.ID] = s.next
	s.next++
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, clone(p))
	}
	// newest first; insertion order breaks ties
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

func clone(p *models.Project) *models.Project {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	return &c
}
