// Package catalog implements the product store. It is an in-memory,
// key-ordered store kept behind the engine's Catalog interface so a durable
// backend can replace it without touching the engine.
package catalog

import (
	"sort"
	"sync"

	"github.com/fairyhunter13/vending-machine-service/internal/model"
	"github.com/google/uuid"
)

// Store is a mutex-guarded in-memory product catalog keyed by product id.
type Store struct {
	mu sync.RWMutex
	m  map[string]model.Product
}

// New creates an empty Store.
func New() *Store {
	return &Store{m: make(map[string]model.Product)}
}

// FindByID returns the product with the given id.
func (s *Store) FindByID(id string) (model.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	return p, ok, nil
}

// FindByName returns the first product with the given display name.
func (s *Store) FindByName(name string) (model.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.m {
		if p.Name == name {
			return p, true, nil
		}
	}
	return model.Product{}, false, nil
}

// Save upserts p, assigning a fresh id when empty, and returns the stored
// product.
func (s *Store) Save(p model.Product) (model.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[p.ID] = p
	return p, nil
}

// DeleteByID removes the product with the given id, if present.
func (s *Store) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// FindAll returns every product ordered by id.
func (s *Store) FindAll() ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
