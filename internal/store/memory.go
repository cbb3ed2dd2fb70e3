// internal/store/memory.go
package store

import (
	"sync"

	"github.com/mlft9/perimapp/internal/models"
)

// MemoryStore keeps the collection in process memory. It backs tests and
// ephemeral runs; semantics mirror the persistent backends exactly.
type MemoryStore struct {
	mu       sync.Mutex
	products []models.Product
}

func NewMemory() *MemoryStore {
	return &MemoryStore{products: []models.Product{}}
}

func (s *MemoryStore) LoadAll() ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *MemoryStore) SaveAll(products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make([]models.Product, len(products))
	copy(s.products, products)
	return nil
}

func (s *MemoryStore) Add(product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, product)
	return nil
}

func (s *MemoryStore) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	return nil
}

func (s *MemoryStore) UpdateByID(id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			patch.apply(&s.products[i])
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
