package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()

	value, err := storage.Load("cart")
	require.NoError(t, err)
	assert.Nil(t, value, "a missing key loads as nil, not as an error")

	require.NoError(t, storage.Save("cart", []byte(`{"userID":"","items":[]}`)))
	value, err = storage.Load("cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"userID":"","items":[]}`, string(value))
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	storage := NewMemoryStorage()
	payload := []byte(`{"userID":"a","items":[]}`)
	require.NoError(t, storage.Save("cart", payload))

	payload[11] = 'b'
	value, err := storage.Load("cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"userID":"a","items":[]}`, string(value))
}

func TestWriteThroughOnEveryMutation(t *testing.T) {
	storage := NewMemoryStorage()
	cartStore := NewCartStore(storage, WithLoadingDelay(testDelay))

	cartStore.AddCartItem("article-1", 2)
	record, err := loadCartRecord(storage)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Len(t, record.Items, 1)
	assert.Equal(t, int64(2), record.Items[0].Quantity)

	cartStore.RemoveCartItem("article-1")
	record, err = loadCartRecord(storage)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Empty(t, record.Items)
}
