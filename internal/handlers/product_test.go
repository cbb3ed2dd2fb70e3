// internal/handlers/product_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mlft9/perimapp/internal/freshness"
	"github.com/mlft9/perimapp/internal/services"
	"github.com/mlft9/perimapp/internal/store"
)

type ProductHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  store.Store
}

func (suite *ProductHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.store = store.NewMemory()
	productHandler := NewProductHandler(services.NewProductService(suite.store))

	suite.router = gin.New()
	products := suite.router.Group("/v1/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/summary", productHandler.GetSummary)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("", productHandler.CreateProduct)
		products.PATCH("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}
}

func (suite *ProductHandlerTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// dateFromToday renders today+offset as a calendar date.
func dateFromToday(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format(freshness.DateLayout)
}

func (suite *ProductHandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *ProductHandlerTestSuite) createProduct(name string, expOffset int) string {
	w := suite.request(http.MethodPost, "/v1/products", map[string]any{
		"name":           name,
		"expirationDate": dateFromToday(expOffset),
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	data := suite.decode(w)["data"].(map[string]any)
	product := data["product"].(map[string]any)
	return product["id"].(string)
}

func (suite *ProductHandlerTestSuite) TestCreateAndGetProduct() {
	w := suite.request(http.MethodPost, "/v1/products", map[string]any{
		"barcode":        "3017620422003",
		"name":           "Nutella",
		"brand":          "Ferrero",
		"expirationDate": dateFromToday(30),
		"quantity":       2,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	response := suite.decode(w)
	assert.True(suite.T(), response["success"].(bool))

	product := response["data"].(map[string]any)["product"].(map[string]any)
	assert.NotEmpty(suite.T(), product["id"])
	assert.Equal(suite.T(), "Nutella", product["name"])
	assert.Equal(suite.T(), "good", product["status"])
	assert.Equal(suite.T(), float64(2), product["quantity"])
	assert.NotEmpty(suite.T(), product["addedDate"])

	w = suite.request(http.MethodGet, "/v1/products/"+product["id"].(string), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	fetched := suite.decode(w)["data"].(map[string]any)["product"].(map[string]any)
	assert.Equal(suite.T(), product["id"], fetched["id"])
}

func (suite *ProductHandlerTestSuite) TestCreateDefaultsQuantityToOne() {
	id := suite.createProduct("Tomates", 10)

	w := suite.request(http.MethodGet, "/v1/products/"+id, nil)
	product := suite.decode(w)["data"].(map[string]any)["product"].(map[string]any)
	assert.Equal(suite.T(), float64(1), product["quantity"])
}

func (suite *ProductHandlerTestSuite) TestCreateRejectsMissingName() {
	w := suite.request(http.MethodPost, "/v1/products", map[string]any{
		"expirationDate": dateFromToday(5),
	})
	suite.Require().Equal(http.StatusBadRequest, w.Code)

	response := suite.decode(w)
	assert.False(suite.T(), response["success"].(bool))
	errObj := response["error"].(map[string]any)
	assert.Equal(suite.T(), "VALIDATION_ERROR", errObj["code"])

	// Rejected submissions never create a partial record.
	w = suite.request(http.MethodGet, "/v1/products", nil)
	products := suite.decode(w)["data"].(map[string]any)["products"].([]any)
	assert.Empty(suite.T(), products)
}

func (suite *ProductHandlerTestSuite) TestCreateRejectsMalformedDate() {
	for _, bad := range []string{"tomorrow", "31/12/2026", "2026-13-01", ""} {
		w := suite.request(http.MethodPost, "/v1/products", map[string]any{
			"name":           "Lait",
			"expirationDate": bad,
		})
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, "date %q should be rejected", bad)
	}
}

func (suite *ProductHandlerTestSuite) TestListClassifiesAndFilters() {
	suite.createProduct("Vieux yaourt", -3)
	suite.createProduct("Fromage frais", 2)
	suite.createProduct("Conserve", 90)

	w := suite.request(http.MethodGet, "/v1/products", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	products := suite.decode(w)["data"].(map[string]any)["products"].([]any)
	suite.Require().Len(products, 3)

	// Insertion order is preserved.
	first := products[0].(map[string]any)
	assert.Equal(suite.T(), "Vieux yaourt", first["name"])
	assert.Equal(suite.T(), "expired", first["status"])
	assert.Equal(suite.T(), float64(-3), first["daysRemaining"])

	second := products[1].(map[string]any)
	assert.Equal(suite.T(), "warning", second["status"])
	third := products[2].(map[string]any)
	assert.Equal(suite.T(), "good", third["status"])

	// Status filter returns exactly the matching records.
	w = suite.request(http.MethodGet, "/v1/products?status=expired", nil)
	expired := suite.decode(w)["data"].(map[string]any)["products"].([]any)
	suite.Require().Len(expired, 1)
	assert.Equal(suite.T(), "Vieux yaourt", expired[0].(map[string]any)["name"])

	// A filter that matches nothing returns an empty sequence, not an error.
	suite.Require().NoError(suite.store.SaveAll(nil))
	suite.createProduct("Vieux yaourt", -3)
	w = suite.request(http.MethodGet, "/v1/products?status=good", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	good := suite.decode(w)["data"].(map[string]any)["products"].([]any)
	assert.Empty(suite.T(), good)
}

func (suite *ProductHandlerTestSuite) TestListRejectsUnknownStatus() {
	w := suite.request(http.MethodGet, "/v1/products?status=stale", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ProductHandlerTestSuite) TestListSortsByExpiration() {
	suite.createProduct("Conserve", 90)
	suite.createProduct("Fromage", 2)
	suite.createProduct("Jus", 30)

	w := suite.request(http.MethodGet, "/v1/products?sort=expiration", nil)
	products := suite.decode(w)["data"].(map[string]any)["products"].([]any)
	suite.Require().Len(products, 3)
	assert.Equal(suite.T(), "Fromage", products[0].(map[string]any)["name"])
	assert.Equal(suite.T(), "Jus", products[1].(map[string]any)["name"])
	assert.Equal(suite.T(), "Conserve", products[2].(map[string]any)["name"])
}

func (suite *ProductHandlerTestSuite) TestSummaryCounts() {
	suite.createProduct("Vieux yaourt", -1)
	suite.createProduct("Très vieux yaourt", -40)
	suite.createProduct("Fromage", 5)
	suite.createProduct("Conserve", 200)

	w := suite.request(http.MethodGet, "/v1/products/summary", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	summary := suite.decode(w)["data"].(map[string]any)["summary"].(map[string]any)
	assert.Equal(suite.T(), float64(4), summary["total"])
	assert.Equal(suite.T(), float64(1), summary["good"])
	assert.Equal(suite.T(), float64(1), summary["warning"])
	assert.Equal(suite.T(), float64(2), summary["expired"])
}

func (suite *ProductHandlerTestSuite) TestExpiringTodayIsWarning() {
	id := suite.createProduct("Dernier jour", 0)

	w := suite.request(http.MethodGet, "/v1/products/"+id, nil)
	product := suite.decode(w)["data"].(map[string]any)["product"].(map[string]any)
	assert.Equal(suite.T(), "warning", product["status"])
	assert.Equal(suite.T(), float64(0), product["daysRemaining"])
}

func (suite *ProductHandlerTestSuite) TestUpdateTouchesOnlyPatchedFields() {
	id := suite.createProduct("Pâtes", 60)
	otherID := suite.createProduct("Riz", 60)

	w := suite.request(http.MethodPatch, "/v1/products/"+id, map[string]any{
		"quantity": 5,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	product := suite.decode(w)["data"].(map[string]any)["product"].(map[string]any)
	assert.Equal(suite.T(), float64(5), product["quantity"])
	assert.Equal(suite.T(), "Pâtes", product["name"])
	assert.Equal(suite.T(), dateFromToday(60), product["expirationDate"])

	w = suite.request(http.MethodGet, "/v1/products/"+otherID, nil)
	other := suite.decode(w)["data"].(map[string]any)["product"].(map[string]any)
	assert.Equal(suite.T(), float64(1), other["quantity"])
}

func (suite *ProductHandlerTestSuite) TestUpdateUnknownIDIsNotFound() {
	w := suite.request(http.MethodPatch, "/v1/products/unknown", map[string]any{
		"quantity": 2,
	})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ProductHandlerTestSuite) TestUpdateRejectsInvalidQuantity() {
	id := suite.createProduct("Pâtes", 60)

	w := suite.request(http.MethodPatch, "/v1/products/"+id, map[string]any{
		"quantity": 0,
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ProductHandlerTestSuite) TestDeleteIsIdempotent() {
	id := suite.createProduct("Jambon", 4)
	suite.createProduct("Beurre", 12)

	w := suite.request(http.MethodDelete, "/v1/products/"+id, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	// Second delete of the same id still succeeds.
	w = suite.request(http.MethodDelete, "/v1/products/"+id, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/v1/products", nil)
	products := suite.decode(w)["data"].(map[string]any)["products"].([]any)
	suite.Require().Len(products, 1)
	assert.Equal(suite.T(), "Beurre", products[0].(map[string]any)["name"])
}

func (suite *ProductHandlerTestSuite) TestGetUnknownProductIsNotFound() {
	w := suite.request(http.MethodGet, fmt.Sprintf("/v1/products/%s", "nope"), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ProductHandlerTestSuite) TestCreatedIDsAreUnique() {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id := suite.createProduct("Produit", 10)
		assert.False(suite.T(), seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestProductHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProductHandlerTestSuite))
}
