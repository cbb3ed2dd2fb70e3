// internal/lookup/client.go
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mlft9/perimapp/internal/config"
)

// ProductData is the metadata a successful barcode lookup yields.
type ProductData struct {
	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Categories string `json:"categories,omitempty"`
}

// Open Food Facts v0 product response.
type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	ProductName string `json:"product_name"`
	Brands      string `json:"brands"`
	ImageURL    string `json:"image_url"`
	Categories  string `json:"categories"`
}

// Client queries the Open Food Facts product database. Failures are not
// errors to the caller: network trouble, bad payloads and unknown barcodes
// all collapse to "no data found" so the user can fall back to manual entry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
}

func NewClient(cfg config.LookupConfig, cache Cache) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		cache: cache,
	}
}

// FetchByBarcode returns product metadata for a barcode, or nil when the
// database has nothing usable.
func (c *Client) FetchByBarcode(ctx context.Context, barcode string) *ProductData {
	if data, ok := c.cache.Get(ctx, barcode); ok {
		return data
	}

	url := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logrus.WithError(err).WithField("barcode", barcode).Warn("Failed to build lookup request")
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("barcode", barcode).Warn("Product lookup failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.WithFields(logrus.Fields{
			"barcode": barcode,
			"status":  resp.StatusCode,
		}).Warn("Product lookup returned non-200")
		return nil
	}

	var payload offResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logrus.WithError(err).WithField("barcode", barcode).Warn("Failed to decode lookup response")
		return nil
	}

	// status 1 means found; anything else is "no data".
	if payload.Status != 1 || payload.Product.ProductName == "" {
		return nil
	}

	data := &ProductData{
		Name:       payload.Product.ProductName,
		Brand:      payload.Product.Brands,
		ImageURL:   payload.Product.ImageURL,
		Categories: payload.Product.Categories,
	}
	c.cache.Set(ctx, barcode, data)
	return data
}
