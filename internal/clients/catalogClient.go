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

package clients

import (
	"context"
	"encoding/json"
	movingaverage "github.com/RobinUS2/golang-moving-average"
	"github.com/Tobias-Pe/Storefront/api/requests"
	"github.com/Tobias-Pe/Storefront/pkg/circuitbreaker"
	customerrors "github.com/Tobias-Pe/Storefront/pkg/custom-errors"
	loggingUtil "github.com/Tobias-Pe/Storefront/pkg/log"
	"github.com/Tobias-Pe/Storefront/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	movingWindowSize     = 10
	defaultTimeoutMillis = 1000

	methodListProducts = "ListProducts"
	methodGetProducts  = "GetProducts"
)

var logger = loggingUtil.InitLogger()

// CatalogClient reads product data from the external catalog API. Prices
// and stock are never cached, every total computation works on a fresh
// snapshot.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client

	breaker *gobreaker.CircuitBreaker

	timeoutDuration time.Duration
	movingTimeout   *movingaverage.ConcurrentMovingAverage

	timeoutMetric  *metrics.TimeoutMetric
	requestsMetric *metrics.RequestsMetric
}

// NewCatalogClient wires the breaker and the adaptive timeout. With a nil
// staticTimeoutMillis the timeout follows a moving average of observed
// latencies, otherwise it stays fixed.
func NewCatalogClient(baseURL string, staticTimeoutMillis *int, requestsMetric *metrics.RequestsMetric) *CatalogClient {
	catalogClient := CatalogClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		requestsMetric: requestsMetric,
	}

	catalogClient.timeoutMetric = metrics.NewTimeoutMetric()
	catalogClient.breaker = circuitbreaker.NewCircuitBreaker("catalog", metrics.NewCircuitBreakerMetric())

	if staticTimeoutMillis != nil {
		catalogClient.timeoutDuration = time.Duration(*staticTimeoutMillis) * time.Millisecond
		catalogClient.timeoutMetric.Update(*staticTimeoutMillis, methodGetProducts)
	} else {
		catalogClient.timeoutDuration = time.Duration(defaultTimeoutMillis) * time.Millisecond
		catalogClient.timeoutMetric.Update(defaultTimeoutMillis, methodGetProducts)
		catalogClient.movingTimeout = movingaverage.Concurrent(movingaverage.New(movingWindowSize))
	}

	return &catalogClient
}

// ListProducts fetches one listing page from the catalog.
func (catalogClient *CatalogClient) ListProducts(ctx context.Context, page int64, limit int64, search string) (*requests.ListProductsResponse, error) {
	query := url.Values{}
	query.Set("page", strconv.FormatInt(page, 10))
	query.Set("limit", strconv.FormatInt(limit, 10))
	if search != "" {
		query.Set("search", search)
	}

	response := &requests.ListProductsResponse{}
	if err := catalogClient.getJSON(ctx, query, methodListProducts, response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetProducts resolves current records including stock and price for the
// given product ids.
func (catalogClient *CatalogClient) GetProducts(ctx context.Context, productIDs []string) ([]requests.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	query := url.Values{}
	for _, productID := range productIDs {
		query.Add("id", productID)
	}
	query.Set("with_stock", "true")

	response := &requests.GetProductsResponse{}
	if err := catalogClient.getJSON(ctx, query, methodGetProducts, response); err != nil {
		return nil, err
	}
	return response.Products, nil
}

// getJSON runs one catalog request through the circuit breaker and decodes
// the body into target. Upstream failures come back as ErrCatalogUnavailable,
// the caller surfaces them as a display-only message and does not retry.
func (catalogClient *CatalogClient) getJSON(ctx context.Context, query url.Values, method string, target interface{}) error {
	requestURL := catalogClient.baseURL + "/products?" + query.Encode()

	start := time.Now()
	_, err := catalogClient.breaker.Execute(func() (interface{}, error) {
		requestCtx, cancel := context.WithTimeout(ctx, catalogClient.timeoutDuration)
		defer cancel()

		request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		response, err := catalogClient.httpClient.Do(request)
		if err != nil {
			return nil, errors.Wrap(customerrors.ErrCatalogUnavailable, err.Error())
		}
		defer func(body io.ReadCloser) {
			err := body.Close()
			if err != nil {
				logger.WithError(err).Warn("response body could not be successfully closed")
			}
		}(response.Body)

		if response.StatusCode != http.StatusOK {
			return nil, errors.Wrapf(customerrors.ErrCatalogUnavailable, "unexpected status %d", response.StatusCode)
		}
		if err := json.NewDecoder(response.Body).Decode(target); err != nil {
			return nil, errors.Wrap(customerrors.ErrCatalogUnavailable, err.Error())
		}
		return nil, nil
	})
	elapsed := time.Since(start)
	catalogClient.calcTimeout(elapsed)
	catalogClient.requestsMetric.Increment(err, method)

	return err
}

// calcTimeout adjusts the timeout to 1.5x the moving average latency once
// the window is filled.
func (catalogClient *CatalogClient) calcTimeout(elapsed time.Duration) {
	if catalogClient.movingTimeout == nil {
		return
	}
	catalogClient.movingTimeout.Add(elapsed.Seconds())
	if catalogClient.movingTimeout.Count() >= movingWindowSize {
		millis := (catalogClient.movingTimeout.Avg() * 1000) * 1.5
		catalogClient.timeoutDuration = time.Duration(millis) * time.Millisecond
		catalogClient.timeoutMetric.Update(int(millis), methodGetProducts)
	}
}
