// internal/handlers/lookup_test.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlft9/perimapp/internal/config"
	"github.com/mlft9/perimapp/internal/lookup"
)

func newLookupRouter(t *testing.T, upstream http.HandlerFunc) (*gin.Engine, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cache := lookup.NewCache(config.RedisConfig{}, time.Minute)
	client := lookup.NewClient(config.LookupConfig{BaseURL: srv.URL, Timeout: 2}, cache)

	r := gin.New()
	r.GET("/v1/lookup/:barcode", NewLookupHandler(client).GetByBarcode)
	return r, srv
}

func TestLookupFound(t *testing.T) {
	r, _ := newLookupRouter(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"status": 1, "product": {"product_name": "Nutella", "brands": "Ferrero", "categories": "Pâtes à tartiner"}}`)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/lookup/3017620422003", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	data := response["data"].(map[string]any)
	assert.True(t, data["found"].(bool))
	product := data["product"].(map[string]any)
	assert.Equal(t, "Nutella", product["name"])
	assert.Equal(t, "Ferrero", product["brand"])
	assert.Equal(t, "Pâtes à tartiner", product["categories"])
}

func TestLookupMissIsNotAnError(t *testing.T) {
	r, _ := newLookupRouter(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"status": 0}`)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/lookup/0000000000000", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	data := response["data"].(map[string]any)
	assert.False(t, data["found"].(bool))
	assert.NotContains(t, data, "product")
}

func TestLookupUpstreamFailureIsNotAnError(t *testing.T) {
	r, srv := newLookupRouter(t, func(w http.ResponseWriter, req *http.Request) {})
	srv.Close() // upstream is unreachable

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/lookup/3017620422003", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response["data"].(map[string]any)["found"].(bool))
}
