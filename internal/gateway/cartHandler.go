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

package gateway

import (
	"fmt"
	"github.com/Tobias-Pe/Storefront/api/requests"
	"github.com/Tobias-Pe/Storefront/internal/clients"
	"github.com/Tobias-Pe/Storefront/internal/store"
	customerrors "github.com/Tobias-Pe/Storefront/pkg/custom-errors"
	"github.com/Tobias-Pe/Storefront/pkg/money"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"net/http"
)

// CartHandler wires the UI cart operations to the state container. The
// quantity bounds (at least 1, at most the available stock) are enforced
// here, the store trusts its inputs apart from the zero guard.
type CartHandler struct {
	cartStore     *store.CartStore
	catalogClient *clients.CatalogClient
}

func NewCartHandler(cartStore *store.CartStore, catalogClient *clients.CatalogClient) *CartHandler {
	return &CartHandler{cartStore: cartStore, catalogClient: catalogClient}
}

// cartLine is one rendered cart row.
type cartLine struct {
	ProductID       string `json:"product_id"`
	Name            string `json:"name"`
	ImageURL        string `json:"image_url"`
	Quantity        int64  `json:"quantity"`
	Stock           int64  `json:"stock"`
	SubTotal        int64  `json:"sub_total"`
	SubTotalDisplay string `json:"sub_total_display"`
}

// GetCart renders the cart view. Prices always come from a fresh catalog
// snapshot, the derived total is recomputed before rendering.
func (handler CartHandler) GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		cart := handler.cartStore.Cart()

		var products []requests.Product
		if len(cart.Items) > 0 {
			productIDs := make([]string, 0, len(cart.Items))
			for _, item := range cart.Items {
				productIDs = append(productIDs, item.ProductID)
			}
			var err error
			products, err = handler.catalogClient.GetProducts(c.Request.Context(), productIDs)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retry": true})
				return
			}
			handler.cartStore.CalculateTotalPrice(products)
			cart = handler.cartStore.Cart()
		}

		currencyCode := "USD"
		if len(products) > 0 {
			currencyCode = products[0].Price.CurrencyCode
		}

		lines := make([]cartLine, 0, len(cart.Items))
		for _, item := range cart.Items {
			line := cartLine{ProductID: item.ProductID, Quantity: item.Quantity}
			for _, product := range products {
				if product.ID == item.ProductID {
					line.Name = product.Name
					line.ImageURL = product.ImageURL
					line.Stock = product.Stock
					line.SubTotal = product.Price.Units * item.Quantity
					line.SubTotalDisplay = money.Format(line.SubTotal, product.Price.CurrencyCode)
					break
				}
			}
			lines = append(lines, line)
		}

		c.JSON(http.StatusOK, gin.H{
			"user_id":       cart.UserID,
			"items":         lines,
			"total_price":   cart.TotalPrice,
			"total_display": money.Format(cart.TotalPrice, currencyCode),
			"is_loading":    cart.IsLoading,
			"error_message": cart.ErrorMessage,
		})
	}
}

// PutItem sets a cart line to an explicit quantity, the detail page submit.
func (handler CartHandler) PutItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := requests.PutItemInCartRequest{}
		if err := c.ShouldBindWith(&body, binding.JSON); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !handler.checkStock(c, body.ProductID, body.Quantity) {
			return
		}
		handler.cartStore.AddCartItem(body.ProductID, body.Quantity)
		c.JSON(http.StatusAccepted, gin.H{})
	}
}

// AddQuantity increments an existing line, the cart page stepper.
func (handler CartHandler) AddQuantity() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := requests.PutItemInCartRequest{}
		if err := c.ShouldBindWith(&body, binding.JSON); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		current := int64(0)
		for _, item := range handler.cartStore.Cart().Items {
			if item.ProductID == body.ProductID {
				current = item.Quantity
				break
			}
		}
		if !handler.checkStock(c, body.ProductID, current+body.Quantity) {
			return
		}
		handler.cartStore.AddQuantityInCart(body.ProductID, body.Quantity)
		c.JSON(http.StatusAccepted, gin.H{})
	}
}

// RemoveItem drops one line. Removing an absent line still answers OK.
func (handler CartHandler) RemoveItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("id")
		if len(productID) == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Errorf("the id parameter is required after /cart/item/").Error()})
			return
		}
		handler.cartStore.RemoveCartItem(productID)
		c.JSON(http.StatusOK, gin.H{})
	}
}

// UpdateUser replaces the cart's identity label.
func (handler CartHandler) UpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := requests.UpdateCartUserRequest{}
		if err := c.ShouldBindWith(&body, binding.JSON); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		handler.cartStore.UpdateUserID(body.UserID)
		c.JSON(http.StatusOK, gin.H{})
	}
}

// checkStock verifies the requested quantity against a fresh catalog
// record. A violation sets the cart's transient error message and leaves
// the cart unchanged.
func (handler CartHandler) checkStock(c *gin.Context, productID string, quantity int64) bool {
	if quantity < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Errorf("quantity must be at least 1").Error()})
		return false
	}

	products, err := handler.catalogClient.GetProducts(c.Request.Context(), []string{productID})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retry": true})
		return false
	}
	if len(products) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": customerrors.ErrProductNotFound.Error()})
		return false
	}
	if quantity > products[0].Stock {
		handler.cartStore.SetErrorMessage(customerrors.ErrQuantityExceedsStock.Error())
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": customerrors.ErrQuantityExceedsStock.Error()})
		return false
	}
	return true
}
