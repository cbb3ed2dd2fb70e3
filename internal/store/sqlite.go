// internal/store/sqlite.go
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mlft9/perimapp/internal/models"
)

// productRow is the relational shape of a record. The position column keeps
// insertion order so the row-per-record backend preserves the same ordering
// the blob backends get for free.
type productRow struct {
	ID             string `gorm:"primaryKey;size:36"`
	Position       int64  `gorm:"index;not null"`
	Barcode        string
	Name           string `gorm:"not null"`
	Brand          string
	ImageURL       string
	ExpirationDate string `gorm:"size:10;not null"`
	AddedDate      int64  `gorm:"not null"` // unix nanoseconds
	Category       string
	Quantity       int `gorm:"not null;default:1"`
}

func (productRow) TableName() string { return "products" }

// SQLiteStore is the keyed-upsert alternative to the blob backends: mutations
// touch only the affected row instead of rewriting the whole collection.
type SQLiteStore struct {
	mu sync.Mutex
	db *gorm.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}

	if err := db.AutoMigrate(&productRow{}); err != nil {
		return nil, fmt.Errorf("migrate products table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadAll() ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *SQLiteStore) SaveAll(products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&productRow{}).Error; err != nil {
			return err
		}
		for i, p := range products {
			if err := tx.Create(toRow(p, int64(i))).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Add(product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var next int64
		row := tx.Model(&productRow{}).Select("COALESCE(MAX(position), -1) + 1")
		if err := row.Scan(&next).Error; err != nil {
			return err
		}
		return tx.Create(toRow(product, next)).Error
	})
}

func (s *SQLiteStore) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Where("id = ?", id).Delete(&productRow{}).Error
}

func (s *SQLiteStore) UpdateByID(id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var row productRow
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		product := fromRow(row)
		patch.apply(&product)
		// Save writes every column, so fields patched to their zero value
		// are not silently skipped.
		return tx.Save(toRow(product, row.Position)).Error
	})
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) loadLocked() ([]models.Product, error) {
	var rows []productRow
	if err := s.db.Order("position asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, fromRow(row))
	}
	return products, nil
}

func toRow(p models.Product, position int64) *productRow {
	return &productRow{
		ID:             p.ID,
		Position:       position,
		Barcode:        p.Barcode,
		Name:           p.Name,
		Brand:          p.Brand,
		ImageURL:       p.ImageURL,
		ExpirationDate: p.ExpirationDate,
		AddedDate:      p.AddedDate.UnixNano(),
		Category:       p.Category,
		Quantity:       p.Quantity,
	}
}

func fromRow(row productRow) models.Product {
	return models.Product{
		ID:             row.ID,
		Barcode:        row.Barcode,
		Name:           row.Name,
		Brand:          row.Brand,
		ImageURL:       row.ImageURL,
		ExpirationDate: row.ExpirationDate,
		AddedDate:      time.Unix(0, row.AddedDate).UTC(),
		Category:       row.Category,
		Quantity:       row.Quantity,
	}
}
