// internal/store/bolt.go
package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/mlft9/perimapp/internal/models"
)

const (
	boltBucket = "perimapp"

	// recordsKey matches the storage key the original browser client used,
	// so exported blobs stay recognizable.
	recordsKey = "perimapp_products"
)

// BoltStore persists the collection as a single UTF-8 JSON array blob under a
// well-known key in an embedded bbolt database.
type BoltStore struct {
	mu sync.Mutex
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) LoadAll() ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *BoltStore) SaveAll(products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(products)
}

func (s *BoltStore) Add(product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadLocked()
	if err != nil {
		return err
	}
	return s.saveLocked(append(products, product))
}

func (s *BoltStore) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadLocked()
	if err != nil {
		return err
	}

	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.saveLocked(kept)
}

func (s *BoltStore) UpdateByID(id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadLocked()
	if err != nil {
		return err
	}

	for i := range products {
		if products[i].ID == id {
			patch.apply(&products[i])
			return s.saveLocked(products)
		}
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) loadLocked() ([]models.Product, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(boltBucket)).Get([]byte(recordsKey)); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read records blob: %w", err)
	}

	if len(raw) == 0 {
		return []models.Product{}, nil
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		// Corrupt blob: recover as an empty collection rather than failing.
		logrus.WithError(err).Warn("Corrupt records blob, starting from an empty collection")
		return []models.Product{}, nil
	}
	return products, nil
}

func (s *BoltStore) saveLocked(products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}

	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode records blob: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(recordsKey), raw)
	})
}
