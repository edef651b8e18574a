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
	"bytes"
	"context"
	"encoding/json"
	"github.com/Tobias-Pe/Storefront/api/requests"
	customerrors "github.com/Tobias-Pe/Storefront/pkg/custom-errors"
	"github.com/Tobias-Pe/Storefront/pkg/metrics"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const methodLogin = "Login"

// AuthClient delegates credential checks to the remote auth provider. The
// storefront never sees more than the issued token.
type AuthClient struct {
	baseURL        string
	httpClient     *http.Client
	requestsMetric *metrics.RequestsMetric
}

func NewAuthClient(baseURL string, requestsMetric *metrics.RequestsMetric) *AuthClient {
	return &AuthClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: 5 * time.Second},
		requestsMetric: requestsMetric,
	}
}

// Login posts the credentials to the auth provider. A non-OK response or a
// missing token both yield ErrNoSession.
func (authClient *AuthClient) Login(ctx context.Context, email string, password string) (string, error) {
	token, err := authClient.login(ctx, email, password)
	authClient.requestsMetric.Increment(err, methodLogin)
	return token, err
}

func (authClient *AuthClient) login(ctx context.Context, email string, password string) (string, error) {
	body, err := json.Marshal(requests.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, authClient.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := authClient.httpClient.Do(request)
	if err != nil {
		return "", errors.Wrap(customerrors.ErrNoSession, err.Error())
	}
	defer func(body io.ReadCloser) {
		err := body.Close()
		if err != nil {
			logger.WithError(err).Warn("response body could not be successfully closed")
		}
	}(response.Body)

	if response.StatusCode != http.StatusOK {
		return "", errors.Wrapf(customerrors.ErrNoSession, "unexpected status %d", response.StatusCode)
	}

	loginResponse := requests.LoginResponse{}
	if err := json.NewDecoder(response.Body).Decode(&loginResponse); err != nil {
		return "", errors.Wrap(customerrors.ErrNoSession, err.Error())
	}
	if loginResponse.Token == "" {
		return "", customerrors.ErrNoSession
	}

	return loginResponse.Token, nil
}
