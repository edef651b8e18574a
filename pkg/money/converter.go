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

package money

import (
	"github.com/shopspring/decimal"
)

// decimalPlaces returns how many minor-unit digits a currency carries.
func decimalPlaces(currencyCode string) int32 {
	switch currencyCode {
	case "JPY", "IDR", "KRW":
		return 0
	default:
		return 2 // USD, EUR, etc.
	}
}

// Amount converts catalog minor units into a decimal amount.
func Amount(units int64, currencyCode string) decimal.Decimal {
	places := decimalPlaces(currencyCode)
	return decimal.NewFromInt(units).Div(decimal.NewFromInt(10).Pow(decimal.NewFromInt32(places)))
}

// Format renders minor units as a display string, e.g. 1999 USD -> "19.99 USD".
func Format(units int64, currencyCode string) string {
	places := decimalPlaces(currencyCode)
	return Amount(units, currencyCode).StringFixed(places) + " " + currencyCode
}
