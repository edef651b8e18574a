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

package main

import (
	"time"

	"github.com/Tobias-Pe/Storefront/internal/clients"
	"github.com/Tobias-Pe/Storefront/internal/events"
	"github.com/Tobias-Pe/Storefront/internal/gateway"
	"github.com/Tobias-Pe/Storefront/internal/store"
	loggingUtil "github.com/Tobias-Pe/Storefront/pkg/log"
	"github.com/Tobias-Pe/Storefront/pkg/metrics"
	"github.com/gin-gonic/gin"
	loggrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	ginlogrus "github.com/toorop/gin-logrus"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

type configuration struct {
	port             string
	catalogURL       string
	authURL          string
	cacheAddress     string
	cachePort        string
	rabbitAddress    string
	rabbitPort       string
	loadingDelayMs   int64
	catalogTimeoutMs int64
}

type service struct {
	cartStore      *store.CartStore
	catalogClient  *clients.CatalogClient
	authClient     *clients.AuthClient
	eventPublisher *events.Publisher
}

var logger = loggingUtil.InitLogger()

func main() {
	configuration := readConfig()
	service := createService(configuration)
	defer service.closeConnections()

	createRouter(service, configuration)
}

func readConfig() configuration {
	viper.SetConfigType("env")
	viper.SetConfigName("local")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()

	if err != nil {
		logger.Info(err)
	}

	serverPort := viper.GetString("STOREFRONT_PORT")
	catalogURL := viper.GetString("CATALOG_URL")
	authURL := viper.GetString("AUTH_URL")
	cacheAddress := viper.GetString("CART_REDIS_ADDRESS")
	cachePort := viper.GetString("CART_REDIS_PORT")
	rabbitAddress := viper.GetString("RABBIT_MQ_ADDRESS")
	rabbitPort := viper.GetString("RABBIT_MQ_PORT")
	loadingDelayMs := viper.GetInt64("CART_LOADING_DELAY_MS")
	catalogTimeoutMs := viper.GetInt64("CATALOG_TIMEOUT_MS")

	logger.WithFields(loggrus.Fields{
		"STOREFRONT_PORT":       serverPort,
		"CATALOG_URL":           catalogURL,
		"AUTH_URL":              authURL,
		"CART_REDIS_ADDRESS":    cacheAddress,
		"CART_REDIS_PORT":       cachePort,
		"RABBIT_MQ_ADDRESS":     rabbitAddress,
		"RABBIT_MQ_PORT":        rabbitPort,
		"CART_LOADING_DELAY_MS": loadingDelayMs,
		"CATALOG_TIMEOUT_MS":    catalogTimeoutMs,
	}).Info("config variables read")

	return configuration{
		port:             serverPort,
		catalogURL:       catalogURL,
		authURL:          authURL,
		cacheAddress:     cacheAddress,
		cachePort:        cachePort,
		rabbitAddress:    rabbitAddress,
		rabbitPort:       rabbitPort,
		loadingDelayMs:   loadingDelayMs,
		catalogTimeoutMs: catalogTimeoutMs,
	}
}

func createService(configuration configuration) *service {
	requestsMetric := metrics.NewRequestsMetrics()

	var staticTimeoutMillis *int
	if configuration.catalogTimeoutMs > 0 {
		timeoutMillis := int(configuration.catalogTimeoutMs)
		staticTimeoutMillis = &timeoutMillis
	}
	catalogClient := clients.NewCatalogClient(configuration.catalogURL, staticTimeoutMillis, requestsMetric)
	authClient := clients.NewAuthClient(configuration.authURL, requestsMetric)

	cartStore := store.NewCartStore(createStorage(configuration), storeOptions(configuration)...)

	var eventPublisher *events.Publisher
	if configuration.rabbitAddress != "" {
		var err error
		eventPublisher, err = events.NewPublisher(configuration.rabbitAddress, configuration.rabbitPort)
		if err != nil {
			logger.WithError(err).Warn("Could not connect to rabbitmq, cart events are disabled")
		} else {
			cartStore.Subscribe(eventPublisher)
		}
	}

	return &service{
		cartStore:      cartStore,
		catalogClient:  catalogClient,
		authClient:     authClient,
		eventPublisher: eventPublisher,
	}
}

// createStorage prefers redis and falls back to memory, the storefront
// stays usable without its cache.
func createStorage(configuration configuration) store.Storage {
	if configuration.cacheAddress != "" {
		redisStorage := store.NewRedisStorage(configuration.cacheAddress, configuration.cachePort)
		if redisStorage != nil {
			return redisStorage
		}
		logger.Warn("Could not connect to redis, the cart only lives in memory")
	}
	return store.NewMemoryStorage()
}

func storeOptions(configuration configuration) []store.Option {
	if configuration.loadingDelayMs > 0 {
		return []store.Option{store.WithLoadingDelay(time.Duration(configuration.loadingDelayMs) * time.Millisecond)}
	}
	return nil
}

func createRouter(service *service, configuration configuration) {
	gin.SetMode(gin.DebugMode)
	router := gin.New()
	router.Use(ginlogrus.Logger(logger), gin.Recovery())
	router.Use(gateway.RequestID())

	prometheus := ginprometheus.NewPrometheus("gin")
	prometheus.Use(router)

	productHandler := gateway.NewProductHandler(service.catalogClient)
	authHandler := gateway.NewAuthHandler(service.authClient)
	cartHandler := gateway.NewCartHandler(service.cartStore, service.catalogClient)

	router.GET("/products", productHandler.ListProducts())
	router.GET("/product", productHandler.GetProducts())
	router.POST("/login", authHandler.Login())
	router.GET("/cart", cartHandler.GetCart())
	router.PUT("/cart/item", cartHandler.PutItem())
	router.POST("/cart/item/quantity", cartHandler.AddQuantity())
	router.DELETE("/cart/item/:id", cartHandler.RemoveItem())
	router.PUT("/cart/user", cartHandler.UpdateUser())

	err := router.Run(":" + configuration.port)
	if err != nil {
		return
	}
}

func (service *service) closeConnections() {
	if service.eventPublisher != nil {
		err := service.eventPublisher.Close()
		if err != nil {
			logger.WithError(err).Error("Error on closing amqp-connection")
		}
	}
}
