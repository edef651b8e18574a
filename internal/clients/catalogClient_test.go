package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	customerrors "github.com/Tobias-Pe/Storefront/pkg/custom-errors"
	"github.com/Tobias-Pe/Storefront/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one shared instance, the prometheus collector name registers globally
var testRequestsMetric = metrics.NewRequestsMetrics()

func TestListProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "chair", r.URL.Query().Get("search"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total_pages": 5,
			"page": 2,
			"products": [
				{"id": "article-1", "name": "chair", "price": {"units": 1999, "currency_code": "USD"}}
			]
		}`))
	}))
	defer server.Close()

	catalogClient := NewCatalogClient(server.URL, nil, testRequestsMetric)
	response, err := catalogClient.ListProducts(context.Background(), 2, 20, "chair")
	require.NoError(t, err)
	assert.Equal(t, int64(5), response.TotalPages)
	require.Len(t, response.Products, 1)
	assert.Equal(t, int64(1999), response.Products[0].Price.Units)
}

func TestGetProductsQueriesWithStock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"article-1", "article-2"}, r.URL.Query()["id"])
		assert.Equal(t, "true", r.URL.Query().Get("with_stock"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [
				{"id": "article-1", "price": {"units": 1000, "currency_code": "USD"}, "stock": 4},
				{"id": "article-2", "price": {"units": 500, "currency_code": "USD"}, "stock": 0}
			]
		}`))
	}))
	defer server.Close()

	catalogClient := NewCatalogClient(server.URL, nil, testRequestsMetric)
	products, err := catalogClient.GetProducts(context.Background(), []string{"article-1", "article-2"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(4), products[0].Stock)
}

func TestGetProductsEmptyIDsSkipsTheCall(t *testing.T) {
	catalogClient := NewCatalogClient("http://catalog.invalid", nil, testRequestsMetric)
	products, err := catalogClient.GetProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, products)
}

func TestCatalogErrorStatusSurfacesAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	catalogClient := NewCatalogClient(server.URL, nil, testRequestsMetric)
	_, err := catalogClient.GetProducts(context.Background(), []string{"article-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, customerrors.ErrCatalogUnavailable))
}

func TestCatalogUnreachableSurfacesAsUnavailable(t *testing.T) {
	staticTimeout := 100
	catalogClient := NewCatalogClient("http://127.0.0.1:1", &staticTimeout, testRequestsMetric)
	_, err := catalogClient.GetProducts(context.Background(), []string{"article-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, customerrors.ErrCatalogUnavailable))
}
