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
	"github.com/Tobias-Pe/Storefront/internal/clients"
	loggingUtil "github.com/Tobias-Pe/Storefront/pkg/log"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
)

var logger = loggingUtil.InitLogger()

// ProductHandler serves the listing and detail page data straight from the
// catalog. Nothing here is cached.
type ProductHandler struct {
	catalogClient *clients.CatalogClient
}

func NewProductHandler(catalogClient *clients.CatalogClient) *ProductHandler {
	return &ProductHandler{catalogClient: catalogClient}
}

// ListProducts proxies the listing page query to the catalog.
func (handler ProductHandler) ListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		response, err := handler.catalogClient.ListProducts(c.Request.Context(), page, limit, c.Query("search"))
		if err != nil {
			// display-only failure, the page offers a retry
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retry": true})
			return
		}
		c.JSON(http.StatusOK, response)
	}
}

// GetProducts resolves the detail page records for the requested ids.
func (handler ProductHandler) GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		productIDs := c.QueryArray("id")
		if len(productIDs) == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Errorf("the id parameter is required").Error()})
			return
		}

		products, err := handler.catalogClient.GetProducts(c.Request.Context(), productIDs)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retry": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
