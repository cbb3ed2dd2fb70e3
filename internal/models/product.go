// internal/models/product.go
package models

import "time"

// FreshnessStatus is derived from the expiration date at read time and is
// never persisted.
type FreshnessStatus string

const (
	StatusGood    FreshnessStatus = "good"
	StatusWarning FreshnessStatus = "warning"
	StatusExpired FreshnessStatus = "expired"
)

func (s FreshnessStatus) Valid() bool {
	switch s {
	case StatusGood, StatusWarning, StatusExpired:
		return true
	}
	return false
}

// Product is the sole persisted entity. The JSON keys are the on-disk blob
// layout; optional fields are omitted when absent, never null.
type Product struct {
	ID             string    `json:"id"`
	Barcode        string    `json:"barcode"`
	Name           string    `json:"name"`
	Brand          string    `json:"brand,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	ExpirationDate string    `json:"expirationDate"`
	AddedDate      time.Time `json:"addedDate"`
	Category       string    `json:"category,omitempty"`
	Quantity       int       `json:"quantity"`
}

// ClassifiedProduct is the read-side view of a record: the stored fields plus
// the freshness derived against the current date.
type ClassifiedProduct struct {
	Product
	Status        FreshnessStatus `json:"status"`
	DaysRemaining int             `json:"daysRemaining"`
}

// StatusSummary aggregates per-status record counts for the dashboard tiles.
type StatusSummary struct {
	Total   int `json:"total"`
	Good    int `json:"good"`
	Warning int `json:"warning"`
	Expired int `json:"expired"`
}
