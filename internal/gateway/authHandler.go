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
	"github.com/Tobias-Pe/Storefront/api/requests"
	"github.com/Tobias-Pe/Storefront/internal/clients"
	customerrors "github.com/Tobias-Pe/Storefront/pkg/custom-errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	loggrus "github.com/sirupsen/logrus"
	"net/http"
)

// AuthHandler is a thin adapter in front of the remote auth provider. It
// never checks credentials itself.
type AuthHandler struct {
	authClient *clients.AuthClient
}

func NewAuthHandler(authClient *clients.AuthClient) *AuthHandler {
	return &AuthHandler{authClient: authClient}
}

// Login forwards the credentials and answers with the issued token. Every
// failure collapses into one "no session" answer, the page must not learn
// why the login failed.
func (handler AuthHandler) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		loginRequest := requests.LoginRequest{}
		if err := c.ShouldBindWith(&loginRequest, binding.JSON); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		token, err := handler.authClient.Login(c.Request.Context(), loginRequest.Email, loginRequest.Password)
		if err != nil {
			logger.WithFields(loggrus.Fields{"email": loginRequest.Email}).WithError(err).Warn("Login failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": customerrors.ErrNoSession.Error()})
			return
		}
		c.JSON(http.StatusOK, requests.LoginResponse{Token: token})
	}
}
