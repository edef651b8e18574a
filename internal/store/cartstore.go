/*
 * MIT License
 *
 * Copyright (c) 2021 Tobias Leonhard Joschka Peslalz
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package store

import (
	"github.com/Tobias-Pe/Storefront/api/requests"
	loggingUtil "github.com/Tobias-Pe/Storefront/pkg/log"
	loggrus "github.com/sirupsen/logrus"
	"sync"
	"time"
)

// defaultLoadingDelay models the round trip to a future cart backend. The
// mutation itself commits synchronously and locally.
const defaultLoadingDelay = time.Second

var logger = loggingUtil.InitLogger()

// CartItem is one cart line. ProductID is the dedup key, there is never
// more than one line per product.
type CartItem struct {
	ProductID string `json:"productID"`
	Quantity  int64  `json:"quantity"`
}

// Cart is the complete state of the container. TotalPrice is derived by
// CalculateTotalPrice and never set directly. IsLoading and ErrorMessage
// are session-transient, they self-clear and are never persisted.
type Cart struct {
	UserID       string
	Items        []CartItem
	TotalPrice   int64
	IsLoading    bool
	ErrorMessage string
}

// Observer gets a state snapshot after every committed transition,
// including the timer-driven transient clears. Persistence and event
// publishing hang off this instead of being inlined into the mutators.
type Observer interface {
	CartChanged(cart Cart)
}

// CartStore is the state container behind the storefront's cart. It is
// constructed explicitly and passed by reference, there is no package-wide
// singleton. Mutators commit atomically under an internal mutex because the
// delayed clears run on their own timer goroutines.
type CartStore struct {
	mu   sync.Mutex
	cart Cart

	loadingDelay time.Duration
	loadingTimer *time.Timer
	errorTimer   *time.Timer

	observers []Observer
}

type Option func(*CartStore)

// WithLoadingDelay overrides the simulated commit delay.
func WithLoadingDelay(delay time.Duration) Option {
	return func(store *CartStore) {
		store.loadingDelay = delay
	}
}

// NewCartStore rehydrates the durable fields from storage, or starts empty
// when storage is nil, holds nothing or holds a corrupt record. A non-nil
// storage is subscribed for write-through persistence.
func NewCartStore(storage Storage, options ...Option) *CartStore {
	store := &CartStore{loadingDelay: defaultLoadingDelay}
	for _, option := range options {
		option(store)
	}

	if storage == nil {
		return store
	}

	record, err := loadCartRecord(storage)
	if err != nil {
		logger.WithError(err).Warn("Could not rehydrate cart. Starting empty.")
	} else if record != nil {
		store.cart.UserID = record.UserID
		store.cart.Items = record.Items
		logger.WithFields(loggrus.Fields{"userID": record.UserID, "items": len(record.Items)}).Info("Rehydrated cart")
	}
	store.Subscribe(&persistenceObserver{storage: storage})

	return store
}

// Subscribe registers an observer for committed state transitions.
func (store *CartStore) Subscribe(observer Observer) {
	store.mu.Lock()
	store.observers = append(store.observers, observer)
	store.mu.Unlock()
}

// Cart returns a snapshot of the current state.
func (store *CartStore) Cart() Cart {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshot()
}

// AddCartItem sets the cart line for productID to exactly quantity. An
// existing line is overwritten, not summed, a missing line is appended at
// the end. Quantity 0 is a no-op without any state transition.
func (store *CartStore) AddCartItem(productID string, quantity int64) {
	if quantity == 0 {
		return
	}

	store.mu.Lock()
	store.beginMutation()
	found := false
	for i := range store.cart.Items {
		if store.cart.Items[i].ProductID == productID {
			store.cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		store.cart.Items = append(store.cart.Items, CartItem{ProductID: productID, Quantity: quantity})
	}
	store.scheduleLoadingClear()
	cart := store.snapshot()
	store.mu.Unlock()

	logger.WithFields(loggrus.Fields{"productID": productID, "quantity": quantity, "overwrote": found}).Info("Set cart item")
	store.notify(cart)
}

// AddQuantityInCart adds quantity on top of an existing line. Unlike
// AddCartItem it never creates a line: the cart page stepper can only
// change what the detail page put there. Quantity 0 is a no-op.
func (store *CartStore) AddQuantityInCart(productID string, quantity int64) {
	if quantity == 0 {
		return
	}

	store.mu.Lock()
	store.beginMutation()
	for i := range store.cart.Items {
		if store.cart.Items[i].ProductID == productID {
			store.cart.Items[i].Quantity += quantity
			break
		}
	}
	store.scheduleLoadingClear()
	cart := store.snapshot()
	store.mu.Unlock()

	logger.WithFields(loggrus.Fields{"productID": productID, "quantity": quantity}).Info("Added quantity in cart")
	store.notify(cart)
}

// RemoveCartItem drops the line for productID. Removing an absent id is a
// no-op, not an error. When the last line goes, the derived total resets to
// 0. The loading flag is raised and cleared within this call, there is no
// delayed clear.
func (store *CartStore) RemoveCartItem(productID string) {
	store.mu.Lock()
	store.beginMutation()
	filtered := store.cart.Items[:0]
	for _, item := range store.cart.Items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	store.cart.Items = filtered
	if len(store.cart.Items) == 0 {
		store.cart.TotalPrice = 0
	}
	store.cart.IsLoading = false
	cart := store.snapshot()
	store.mu.Unlock()

	logger.WithFields(loggrus.Fields{"productID": productID, "remaining": len(cart.Items)}).Info("Removed cart item")
	store.notify(cart)
}

// UpdateUserID replaces the identity label. Empty string means "anonymous".
func (store *CartStore) UpdateUserID(id string) {
	store.mu.Lock()
	store.beginMutation()
	store.cart.UserID = id
	store.cart.IsLoading = false
	cart := store.snapshot()
	store.mu.Unlock()

	store.notify(cart)
}

// CalculateTotalPrice recomputes the derived total from a fresh catalog
// snapshot: price units times quantity for every line with a matching
// record. Lines missing from the snapshot contribute 0, the catalog is the
// source of truth for prices. The result replaces the total atomically.
func (store *CartStore) CalculateTotalPrice(products []requests.Product) {
	store.mu.Lock()
	store.beginMutation()
	var total int64
	for _, item := range store.cart.Items {
		for _, product := range products {
			if product.ID == item.ProductID {
				total += product.Price.Units * item.Quantity
				break
			}
		}
	}
	store.cart.TotalPrice = total
	store.scheduleLoadingClear()
	cart := store.snapshot()
	store.mu.Unlock()

	logger.WithFields(loggrus.Fields{"totalPrice": total}).Info("Recalculated total price")
	store.notify(cart)
}

// SetErrorMessage sets the transient error and arms its auto-clear. Setting
// a new message re-arms the timer, so an older message can never clear a
// newer one.
func (store *CartStore) SetErrorMessage(message string) {
	store.mu.Lock()
	store.cart.ErrorMessage = message
	if store.errorTimer != nil {
		store.errorTimer.Stop()
	}
	store.errorTimer = time.AfterFunc(store.loadingDelay, store.clearErrorMessage)
	cart := store.snapshot()
	store.mu.Unlock()

	store.notify(cart)
}

// beginMutation raises the loading flag, wipes any pending error and
// cancels timers armed by a previous call. The new call owns the loading
// window from here on. Callers must hold the mutex.
func (store *CartStore) beginMutation() {
	store.cart.IsLoading = true
	store.cart.ErrorMessage = ""
	if store.errorTimer != nil {
		store.errorTimer.Stop()
		store.errorTimer = nil
	}
	if store.loadingTimer != nil {
		store.loadingTimer.Stop()
		store.loadingTimer = nil
	}
}

// scheduleLoadingClear arms the delayed loading clear. Callers must hold
// the mutex.
func (store *CartStore) scheduleLoadingClear() {
	store.loadingTimer = time.AfterFunc(store.loadingDelay, store.clearLoading)
}

func (store *CartStore) clearLoading() {
	store.mu.Lock()
	store.cart.IsLoading = false
	store.loadingTimer = nil
	cart := store.snapshot()
	store.mu.Unlock()

	store.notify(cart)
}

func (store *CartStore) clearErrorMessage() {
	store.mu.Lock()
	store.cart.ErrorMessage = ""
	store.errorTimer = nil
	cart := store.snapshot()
	store.mu.Unlock()

	store.notify(cart)
}

// snapshot copies the state so observers and callers never see the mutable
// item slice. Callers must hold the mutex.
func (store *CartStore) snapshot() Cart {
	cart := store.cart
	cart.Items = append([]CartItem(nil), store.cart.Items...)
	return cart
}

func (store *CartStore) notify(cart Cart) {
	store.mu.Lock()
	observers := append([]Observer(nil), store.observers...)
	store.mu.Unlock()
	for _, observer := range observers {
		observer.CartChanged(cart)
	}
}
