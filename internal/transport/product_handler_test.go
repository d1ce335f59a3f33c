package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"boutique-pos/internal/domain"
	"boutique-pos/internal/service"
	"boutique-pos/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProductRouter(t *testing.T) (*store.ProductStore, chi.Router) {
	t.Helper()
	products := store.NewProductStore(filepath.Join(t.TempDir(), "products.csv"))
	handler := NewProductHandler(service.NewProductService(products), zap.NewNop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return products, router
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doAuthedJSON(t *testing.T, router chi.Router, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProductCreateAndGet(t *testing.T) {
	_, router := newProductRouter(t)

	w := doJSON(t, router, "POST", "/api/products/", map[string]any{
		"name": "Silk Dress", "category": "Dresses", "price": 89.5, "sku": "SD-01", "stock": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)

	data, err := json.Marshal(created.Data)
	require.NoError(t, err)
	var product domain.Product
	require.NoError(t, json.Unmarshal(data, &product))
	require.NotEmpty(t, product.ID)

	w = doJSON(t, router, "GET", "/api/products/"+product.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/products/sku/SD-01", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/products/absent-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductCreateValidation(t *testing.T) {
	_, router := newProductRouter(t)

	// Missing required fields.
	w := doJSON(t, router, "POST", "/api/products/", map[string]any{"name": "No SKU"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var response struct {
		Error struct {
			Message string                 `json:"message"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "validation failed", response.Error.Message)
	assert.Contains(t, response.Error.Details, "validation_errors")
}

func TestProductCreateDuplicateSKUConflict(t *testing.T) {
	_, router := newProductRouter(t)

	body := map[string]any{"name": "Dress", "category": "Dresses", "price": 50.0, "sku": "DUP-01"}
	w := doJSON(t, router, "POST", "/api/products/", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/api/products/", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductListPagination(t *testing.T) {
	products, router := newProductRouter(t)

	for i := 0; i < 7; i++ {
		_, err := products.Insert(domain.Product{
			Name: fmt.Sprintf("Item %d", i), SKU: fmt.Sprintf("SKU-%d", i), Price: 10, Category: "Tops",
		})
		require.NoError(t, err)
	}

	w := doJSON(t, router, "GET", "/api/products/?skip=5&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 7, page.Total)

	items, ok := page.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestProductStockEndpoints(t *testing.T) {
	products, router := newProductRouter(t)

	seed := []domain.Product{
		{Name: "Gone", SKU: "G-01", Price: 10, Stock: 0},
		{Name: "Low", SKU: "L-01", Price: 10, Stock: 2},
		{Name: "Full", SKU: "F-01", Price: 10, Stock: 40},
	}
	for _, p := range seed {
		_, err := products.Insert(p)
		require.NoError(t, err)
	}

	w := doJSON(t, router, "GET", "/api/products/low-stock?threshold=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var low ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &low))
	assert.Equal(t, 1, low.Total)

	w = doJSON(t, router, "GET", "/api/products/out-of-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Total)
}

func TestProductUpdateAndDelete(t *testing.T) {
	products, router := newProductRouter(t)

	created, err := products.Insert(domain.Product{Name: "Coat", SKU: "C-01", Price: 200, Stock: 3})
	require.NoError(t, err)

	w := doJSON(t, router, "PUT", "/api/products/"+created.ID, map[string]any{"price": 180.0})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := products.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(180), got.Price)
	assert.Equal(t, 3, got.Stock)

	w = doJSON(t, router, "DELETE", "/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "DELETE", "/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
