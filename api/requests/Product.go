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

package requests

// Money is the catalog's price shape: minor units plus ISO currency code.
// The cart never stores prices itself, it only multiplies these.
type Money struct {
	Units        int64  `json:"units"`
	CurrencyCode string `json:"currency_code"`
}

// Product is one catalog record. Stock is only populated when the catalog
// was queried with with_stock=true.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Price       Money  `json:"price"`
	Stock       int64  `json:"stock,omitempty"`
}

// ListProductsResponse is one listing page from the catalog.
type ListProductsResponse struct {
	TotalPages int64     `json:"total_pages"`
	Page       int64     `json:"page"`
	Products   []Product `json:"products"`
}

// GetProductsResponse carries the records resolved for a set of product ids.
type GetProductsResponse struct {
	Products []Product `json:"products"`
}
