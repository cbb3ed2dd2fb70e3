// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mlft9/perimapp/internal/freshness"
	"github.com/mlft9/perimapp/internal/models"
	"github.com/mlft9/perimapp/internal/store"
	"github.com/mlft9/perimapp/internal/utils"
)

var ErrProductNotFound = errors.New("product not found")

type ProductService struct {
	store store.Store
	now   func() time.Time
}

type CreateProductRequest struct {
	Barcode        string `json:"barcode" validate:"omitempty,max=64"`
	Name           string `json:"name" validate:"required,min=1,max=255"`
	Brand          string `json:"brand" validate:"omitempty,max=255"`
	ImageURL       string `json:"imageUrl" validate:"omitempty,url"`
	ExpirationDate string `json:"expirationDate" validate:"required,dateonly"`
	Category       string `json:"category" validate:"omitempty,max=255"`
	Quantity       int    `json:"quantity" validate:"omitempty,min=1"`
}

type UpdateProductRequest struct {
	Barcode        *string `json:"barcode" validate:"omitempty,max=64"`
	Name           *string `json:"name" validate:"omitempty,min=1,max=255"`
	Brand          *string `json:"brand" validate:"omitempty,max=255"`
	ImageURL       *string `json:"imageUrl" validate:"omitempty,url"`
	ExpirationDate *string `json:"expirationDate" validate:"omitempty,dateonly"`
	Category       *string `json:"category" validate:"omitempty,max=255"`
	Quantity       *int    `json:"quantity" validate:"omitempty,min=1"`
}

// ListOptions narrows and orders the classified collection.
type ListOptions struct {
	Status string // good, warning, expired or empty for all
	Sort   string // "expiration" for soonest-first, empty for insertion order
}

func NewProductService(st store.Store) *ProductService {
	return &ProductService{store: st, now: time.Now}
}

// WithClock fixes the service's notion of now; tests use it to pin
// classification boundaries.
func (s *ProductService) WithClock(now func() time.Time) *ProductService {
	s.now = now
	return s
}

func (s *ProductService) List(opts ListOptions) ([]models.ClassifiedProduct, error) {
	products, err := s.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	classified := make([]models.ClassifiedProduct, 0, len(products))
	for _, p := range products {
		view := s.classify(p)
		if opts.Status != "" && string(view.Status) != opts.Status {
			continue
		}
		classified = append(classified, view)
	}

	if opts.Sort == "expiration" {
		// ISO calendar dates sort lexicographically in chronological order.
		sort.SliceStable(classified, func(i, j int) bool {
			return classified[i].ExpirationDate < classified[j].ExpirationDate
		})
	}

	return classified, nil
}

func (s *ProductService) Summary() (models.StatusSummary, error) {
	products, err := s.store.LoadAll()
	if err != nil {
		return models.StatusSummary{}, fmt.Errorf("load products: %w", err)
	}

	var summary models.StatusSummary
	summary.Total = len(products)
	for _, p := range products {
		switch s.classify(p).Status {
		case models.StatusGood:
			summary.Good++
		case models.StatusWarning:
			summary.Warning++
		case models.StatusExpired:
			summary.Expired++
		}
	}
	return summary, nil
}

func (s *ProductService) Get(id string) (*models.ClassifiedProduct, error) {
	products, err := s.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	for _, p := range products {
		if p.ID == id {
			view := s.classify(p)
			return &view, nil
		}
	}
	return nil, ErrProductNotFound
}

func (s *ProductService) Create(req *CreateProductRequest) (*models.ClassifiedProduct, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	product := models.Product{
		ID:             uuid.New().String(),
		Barcode:        req.Barcode,
		Name:           req.Name,
		Brand:          req.Brand,
		ImageURL:       req.ImageURL,
		ExpirationDate: req.ExpirationDate,
		AddedDate:      s.now(),
		Category:       req.Category,
		Quantity:       quantity,
	}

	if err := s.store.Add(product); err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}

	view := s.classify(product)
	return &view, nil
}

func (s *ProductService) Update(id string, req *UpdateProductRequest) (*models.ClassifiedProduct, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	patch := store.Patch{
		Barcode:        req.Barcode,
		Name:           req.Name,
		Brand:          req.Brand,
		ImageURL:       req.ImageURL,
		ExpirationDate: req.ExpirationDate,
		Category:       req.Category,
		Quantity:       req.Quantity,
	}
	if err := s.store.UpdateByID(id, patch); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return s.Get(id)
}

func (s *ProductService) Delete(id string) error {
	if err := s.store.DeleteByID(id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// classify derives the freshness view of a record. Stored records always
// carry a validated date; if a foreign blob smuggled in a malformed one, the
// record is shown as expired rather than hidden or crashing the listing.
func (s *ProductService) classify(p models.Product) models.ClassifiedProduct {
	c, err := freshness.Classify(p.ExpirationDate, s.now())
	if err != nil {
		logrus.WithError(err).WithField("product_id", p.ID).Warn("Record has an unparseable expiration date")
		c = freshness.Classification{Status: models.StatusExpired}
	}
	return models.ClassifiedProduct{
		Product:       p,
		Status:        c.Status,
		DaysRemaining: c.DaysRemaining,
	}
}
