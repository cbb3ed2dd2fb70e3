// internal/store/store.go
package store

import (
	"fmt"

	"github.com/mlft9/perimapp/internal/config"
	"github.com/mlft9/perimapp/internal/models"
)

// Store owns the persisted product collection. The collection is an ordered
// sequence; insertion order is preserved. Mutating operations are full
// read-modify-write passes over the collection and are serialized per store
// instance, so there is exactly one active writer at a time.
type Store interface {
	// LoadAll returns the persisted collection. A missing or unreadable
	// blob yields an empty collection, never an error.
	LoadAll() ([]models.Product, error)

	// SaveAll replaces the persisted collection wholesale.
	SaveAll(products []models.Product) error

	// Add appends a record. Uniqueness of the id is the caller's concern.
	Add(product models.Product) error

	// DeleteByID removes the record with the given id. Unknown ids are a
	// no-op, not an error.
	DeleteByID(id string) error

	// UpdateByID merges the patch over the first record with the given id,
	// leaving unspecified fields untouched. Unknown ids are a no-op.
	UpdateByID(id string, patch Patch) error

	Close() error
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Barcode        *string `json:"barcode"`
	Name           *string `json:"name"`
	Brand          *string `json:"brand"`
	ImageURL       *string `json:"imageUrl"`
	ExpirationDate *string `json:"expirationDate"`
	Category       *string `json:"category"`
	Quantity       *int    `json:"quantity"`
}

func (p Patch) apply(product *models.Product) {
	if p.Barcode != nil {
		product.Barcode = *p.Barcode
	}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Brand != nil {
		product.Brand = *p.Brand
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
	if p.ExpirationDate != nil {
		product.ExpirationDate = *p.ExpirationDate
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
}

// Open builds the store selected by the storage configuration.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "bolt":
		return OpenBolt(cfg.Path)
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
