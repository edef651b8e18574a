package store

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Tobias-Pe/Storefront/api/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 50 * time.Millisecond

func newTestStore(t *testing.T) *CartStore {
	t.Helper()
	return NewCartStore(nil, WithLoadingDelay(testDelay))
}

type recordingObserver struct {
	mu        sync.Mutex
	snapshots []Cart
}

func (observer *recordingObserver) CartChanged(cart Cart) {
	observer.mu.Lock()
	observer.snapshots = append(observer.snapshots, cart)
	observer.mu.Unlock()
}

func (observer *recordingObserver) count() int {
	observer.mu.Lock()
	defer observer.mu.Unlock()
	return len(observer.snapshots)
}

func catalogWith(id string, units int64, stock int64) []requests.Product {
	return []requests.Product{
		{
			ID:    id,
			Name:  "article " + id,
			Price: requests.Money{Units: units, CurrencyCode: "USD"},
			Stock: stock,
		},
	}
}

func TestAddCartItemAppendsAndOverwrites(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 2)
	cart := cartStore.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].Quantity)

	// overwrite semantics: the second call sets, it does not sum
	cartStore.AddCartItem("article-1", 5)
	cart = cartStore.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(5), cart.Items[0].Quantity)
}

func TestAddCartItemZeroQuantityIsNoOp(t *testing.T) {
	cartStore := newTestStore(t)
	observer := &recordingObserver{}
	cartStore.Subscribe(observer)

	cartStore.AddCartItem("article-1", 0)

	cart := cartStore.Cart()
	assert.Empty(t, cart.Items)
	assert.False(t, cart.IsLoading)
	assert.Zero(t, observer.count(), "a no-op must not produce a state transition")
}

func TestAddCartItemKeepsInsertionOrder(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 1)
	cartStore.AddCartItem("article-2", 1)
	cartStore.AddCartItem("article-3", 1)
	cartStore.AddCartItem("article-2", 9)

	cart := cartStore.Cart()
	require.Len(t, cart.Items, 3)
	assert.Equal(t, "article-1", cart.Items[0].ProductID)
	assert.Equal(t, "article-2", cart.Items[1].ProductID)
	assert.Equal(t, "article-3", cart.Items[2].ProductID)
}

func TestAddQuantityInCartIsAdditive(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 2)
	cartStore.AddQuantityInCart("article-1", 1)
	cartStore.AddQuantityInCart("article-1", 3)

	cart := cartStore.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(6), cart.Items[0].Quantity)
}

func TestAddQuantityInCartNeverCreatesLines(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddQuantityInCart("unknown", 3)

	assert.Empty(t, cartStore.Cart().Items)
}

func TestAtMostOneLinePerProduct(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 1)
	cartStore.AddCartItem("article-2", 2)
	cartStore.AddCartItem("article-1", 3)
	cartStore.AddQuantityInCart("article-2", 1)
	cartStore.RemoveCartItem("article-1")
	cartStore.AddCartItem("article-1", 4)

	seen := map[string]bool{}
	for _, item := range cartStore.Cart().Items {
		assert.False(t, seen[item.ProductID], "duplicate line for %s", item.ProductID)
		seen[item.ProductID] = true
	}
}

func TestRemoveCartItem(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 2)
	cartStore.CalculateTotalPrice(catalogWith("article-1", 1000, 10))
	require.Equal(t, int64(2000), cartStore.Cart().TotalPrice)

	// removing an absent id is a no-op, not an error
	cartStore.RemoveCartItem("unknown")
	require.Len(t, cartStore.Cart().Items, 1)

	cartStore.RemoveCartItem("article-1")
	cart := cartStore.Cart()
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalPrice, "emptying the cart resets the derived total")
	assert.False(t, cart.IsLoading, "remove clears the loading flag within the call")
}

func TestUpdateUserID(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.UpdateUserID("customer-7")
	assert.Equal(t, "customer-7", cartStore.Cart().UserID)

	cartStore.UpdateUserID("")
	assert.Equal(t, "", cartStore.Cart().UserID)
}

func TestCalculateTotalPrice(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 2)
	cartStore.CalculateTotalPrice(catalogWith("article-1", 1000, 10))
	assert.Equal(t, int64(2000), cartStore.Cart().TotalPrice)
}

func TestCalculateTotalPriceSkipsUnknownItems(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 2)
	cartStore.AddCartItem("gone-from-catalog", 4)
	cartStore.CalculateTotalPrice(catalogWith("article-1", 1000, 10))

	assert.Equal(t, int64(2000), cartStore.Cart().TotalPrice, "items missing from the catalog contribute zero")
}

func TestCalculateTotalPriceReplacesStaleTotal(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 2)
	cartStore.CalculateTotalPrice(catalogWith("article-1", 1000, 10))
	cartStore.CalculateTotalPrice(catalogWith("article-1", 500, 10))

	assert.Equal(t, int64(1000), cartStore.Cart().TotalPrice)
}

func TestSetErrorMessageAutoClears(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.SetErrorMessage("quantity exceeds stock")
	assert.Equal(t, "quantity exceeds stock", cartStore.Cart().ErrorMessage)

	require.Eventually(t, func() bool {
		return cartStore.Cart().ErrorMessage == ""
	}, 10*testDelay, time.Millisecond)
}

func TestMutationClearsErrorMessage(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.SetErrorMessage("quantity exceeds stock")
	cartStore.AddCartItem("article-1", 1)

	assert.Equal(t, "", cartStore.Cart().ErrorMessage)
}

func TestLoadingFlagClearsAfterDelay(t *testing.T) {
	cartStore := newTestStore(t)

	cartStore.AddCartItem("article-1", 1)
	assert.True(t, cartStore.Cart().IsLoading, "a mutator raises the loading flag immediately")

	require.Eventually(t, func() bool {
		return !cartStore.Cart().IsLoading
	}, 10*testDelay, time.Millisecond)
}

func TestOverlappingMutationsExtendLoadingWindow(t *testing.T) {
	cartStore := NewCartStore(nil, WithLoadingDelay(200*time.Millisecond))

	cartStore.AddCartItem("article-1", 1)
	time.Sleep(100 * time.Millisecond)
	// the second call re-arms the clear, the first timer must not fire
	cartStore.AddCartItem("article-2", 1)
	time.Sleep(150 * time.Millisecond)

	assert.True(t, cartStore.Cart().IsLoading, "the superseded timer cleared the newer call's loading window")

	require.Eventually(t, func() bool {
		return !cartStore.Cart().IsLoading
	}, time.Second, 5*time.Millisecond)
}

func TestObserversSeeCommittedTransitions(t *testing.T) {
	cartStore := newTestStore(t)
	observer := &recordingObserver{}
	cartStore.Subscribe(observer)

	cartStore.AddCartItem("article-1", 2)

	require.GreaterOrEqual(t, observer.count(), 1)
	observer.mu.Lock()
	first := observer.snapshots[0]
	observer.mu.Unlock()
	assert.True(t, first.IsLoading)
	require.Len(t, first.Items, 1)
	assert.Equal(t, int64(2), first.Items[0].Quantity)
}

func TestRehydrateFromStorage(t *testing.T) {
	storage := NewMemoryStorage()
	first := NewCartStore(storage, WithLoadingDelay(testDelay))
	first.UpdateUserID("customer-7")
	first.AddCartItem("article-1", 3)

	second := NewCartStore(storage, WithLoadingDelay(testDelay))
	cart := second.Cart()
	assert.Equal(t, "customer-7", cart.UserID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "article-1", cart.Items[0].ProductID)
	assert.Equal(t, int64(3), cart.Items[0].Quantity)
	assert.False(t, cart.IsLoading, "transient state never survives a reload")
	assert.Equal(t, "", cart.ErrorMessage)
}

func TestRehydrateCorruptRecordYieldsEmptyCart(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(cartRecordKey, []byte("{not json")))

	cartStore := NewCartStore(storage, WithLoadingDelay(testDelay))
	cart := cartStore.Cart()
	assert.Empty(t, cart.Items)
	assert.Equal(t, "", cart.UserID)
}

func TestPersistedRecordOmitsTransientFields(t *testing.T) {
	storage := NewMemoryStorage()
	cartStore := NewCartStore(storage, WithLoadingDelay(testDelay))

	cartStore.AddCartItem("article-1", 2)

	payload, err := storage.Load(cartRecordKey)
	require.NoError(t, err)
	require.NotNil(t, payload)

	fields := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Contains(t, fields, "userID")
	assert.Contains(t, fields, "items")
	assert.NotContains(t, fields, "IsLoading")
	assert.NotContains(t, fields, "ErrorMessage")
	assert.NotContains(t, fields, "TotalPrice")
}
