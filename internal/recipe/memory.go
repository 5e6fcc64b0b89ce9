package recipe

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
)

// MemoryStore keeps records in a map. Used by tests and small corpora.
type MemoryStore struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
}

func NewMemoryStore(recipes ...*Recipe) *MemoryStore {
	s := &MemoryStore{recipes: make(map[string]*Recipe, len(recipes))}
	for _, r := range recipes {
		s.recipes[r.ID()] = r
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRecordNotFound, id)
	}
	return r, nil
}

func (s *MemoryStore) GetMany(ctx context.Context, ids []string) (map[string]*Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Recipe, len(ids))
	for _, id := range ids {
		if r, ok := s.recipes[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, recipes []*Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recipes {
		s.recipes[r.ID()] = r
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
