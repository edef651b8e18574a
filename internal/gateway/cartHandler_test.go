package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tobias-Pe/Storefront/internal/clients"
	"github.com/Tobias-Pe/Storefront/internal/store"
	"github.com/Tobias-Pe/Storefront/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake catalog: article-1 with 3 on stock, priced 1000 minor units
const catalogFixture = `{
	"products": [
		{"id": "article-1", "name": "chair", "image_url": "http://img/1", "price": {"units": 1000, "currency_code": "USD"}, "stock": 3}
	]
}`

func newTestRouter(t *testing.T) (*gin.Engine, *store.CartStore, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalogServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.RawQuery, "unknown") {
			_, _ = w.Write([]byte(`{"products": []}`))
			return
		}
		_, _ = w.Write([]byte(catalogFixture))
	}))

	cartStore := store.NewCartStore(store.NewMemoryStorage(), store.WithLoadingDelay(20*time.Millisecond))
	catalogClient := clients.NewCatalogClient(catalogServer.URL, nil, metrics.NewRequestsMetrics())
	cartHandler := NewCartHandler(cartStore, catalogClient)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/cart", cartHandler.GetCart())
	router.PUT("/cart/item", cartHandler.PutItem())
	router.POST("/cart/item/quantity", cartHandler.AddQuantity())
	router.DELETE("/cart/item/:id", cartHandler.RemoveItem())
	router.PUT("/cart/user", cartHandler.UpdateUser())

	return router, cartStore, catalogServer.Close
}

func doJSON(router *gin.Engine, method string, target string, body string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestPutItemAddsLine(t *testing.T) {
	router, cartStore, closeCatalog := newTestRouter(t)
	defer closeCatalog()

	recorder := doJSON(router, http.MethodPut, "/cart/item", `{"product_id": "article-1", "quantity": 2}`)
	assert.Equal(t, http.StatusAccepted, recorder.Code)

	cart := cartStore.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].Quantity)
}

func TestPutItemQuantityExceedsStock(t *testing.T) {
	router, cartStore, closeCatalog := newTestRouter(t)
	defer closeCatalog()

	recorder := doJSON(router, http.MethodPut, "/cart/item", `{"product_id": "article-1", "quantity": 5}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "quantity exceeds stock")

	cart := cartStore.Cart()
	assert.Empty(t, cart.Items, "a rejected mutation leaves the cart unchanged")
	assert.Equal(t, "quantity exceeds stock", cart.ErrorMessage)
}

func TestPutItemUnknownProduct(t *testing.T) {
	router, cartStore, closeCatalog := newTestRouter(t)
	defer closeCatalog()

	recorder := doJSON(router, http.MethodPut, "/cart/item", `{"product_id": "unknown", "quantity": 1}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, cartStore.Cart().Items)
}

func TestAddQuantityBoundsIncludeExistingLine(t *testing.T) {
	router, cartStore, closeCatalog := newTestRouter(t)
	defer closeCatalog()

	cartStore.AddCartItem("article-1", 2)

	// 2 in the cart + 2 more would exceed the 3 on stock
	recorder := doJSON(router, http.MethodPost, "/cart/item/quantity", `{"product_id": "article-1", "quantity": 2}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, int64(2), cartStore.Cart().Items[0].Quantity)

	recorder = doJSON(router, http.MethodPost, "/cart/item/quantity", `{"product_id": "article-1", "quantity": 1}`)
	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Equal(t, int64(3), cartStore.Cart().Items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	router, cartStore, closeCatalog := newTestRouter(t)
	defer closeCatalog()

	cartStore.AddCartItem("article-1", 1)

	recorder := doJSON(router, http.MethodDelete, "/cart/item/article-1", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, cartStore.Cart().Items)

	// removing again is still OK
	recorder = doJSON(router, http.MethodDelete, "/cart/item/article-1", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestGetCartRecomputesTotal(t *testing.T) {
	router, cartStore, closeCatalog := newTestRouter(t)
	defer closeCatalog()

	cartStore.AddCartItem("article-1", 2)

	recorder := doJSON(router, http.MethodGet, "/cart", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"total_price":2000`)
	assert.Contains(t, recorder.Body.String(), `"sub_total_display":"20.00 USD"`)
	assert.Equal(t, int64(2000), cartStore.Cart().TotalPrice)
}

func TestUpdateUser(t *testing.T) {
	router, cartStore, closeCatalog := newTestRouter(t)
	defer closeCatalog()

	recorder := doJSON(router, http.MethodPut, "/cart/user", `{"user_id": "customer-7"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "customer-7", cartStore.Cart().UserID)
}

func TestRequestIDIsIssued(t *testing.T) {
	router, _, closeCatalog := newTestRouter(t)
	defer closeCatalog()

	recorder := doJSON(router, http.MethodGet, "/cart", "")
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}
