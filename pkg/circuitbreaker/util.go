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

package circuitbreaker

import (
	"github.com/Tobias-Pe/Storefront/pkg/metrics"
	"github.com/sony/gobreaker"
	"time"
)

// NewCircuitBreaker trips after 10+ requests with a failure ratio of 25%
// and probes again after 3 seconds. State changes feed the breaker metric.
func NewCircuitBreaker(name string, cbMetric *metrics.CircuitBreakerMetric) *gobreaker.CircuitBreaker {
	var st gobreaker.Settings
	st.Name = name
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 10 && failureRatio >= 0.25
	}
	st.Timeout = time.Duration(3) * time.Second
	st.OnStateChange = func(_ string, from gobreaker.State, to gobreaker.State) {
		cbMetric.Increment(to, name)
	}
	cbMetric.InitMetric(name)

	cb := gobreaker.NewCircuitBreaker(st)

	return cb
}
