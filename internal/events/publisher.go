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

package events

import (
	"encoding/json"
	"math"
	"time"

	"github.com/Tobias-Pe/Storefront/internal/store"
	loggingUtil "github.com/Tobias-Pe/Storefront/pkg/log"
	"github.com/Tobias-Pe/Storefront/pkg/rabbitmq"
	loggrus "github.com/sirupsen/logrus"
)

const (
	// CartTopic is the exchange cart updates are broadcast on.
	CartTopic = "cart"
	// CartUpdatedRoutingKey marks every committed cart transition.
	CartUpdatedRoutingKey = "cart.updated"
)

var logger = loggingUtil.InitLogger()

// cartUpdate is the published view of the cart. Transient flags stay out
// of the message, downstream consumers only care about the durable state.
type cartUpdate struct {
	UserID     string           `json:"userID"`
	Items      []store.CartItem `json:"items"`
	TotalPrice int64            `json:"totalPrice"`
}

// Publisher forwards every committed cart transition to the broker. It is
// registered as one more observer on the state container, a broker outage
// therefore never blocks a cart mutation.
type Publisher struct {
	rabbitmq.AmqpService
}

// NewPublisher dials the broker and declares the cart exchange. The dial
// is retried with exponential backoff because the broker regularly comes
// up after us.
func NewPublisher(rabbitAddress string, rabbitPort string) (*Publisher, error) {
	publisher := &Publisher{
		AmqpService: rabbitmq.AmqpService{
			RabbitURL: "amqp://guest:guest@" + rabbitAddress + ":" + rabbitPort + "/",
		},
	}

	var err error
	for i := 0; i < 6; i++ {
		err = publisher.InitAmqpConnection()
		if err == nil {
			break
		}
		logger.WithError(err).WithFields(loggrus.Fields{"attempt": i + 1}).Warn("Could not connect to rabbitmq")
		time.Sleep(time.Duration(int64(math.Pow(2, float64(i)))) * time.Second)
	}
	if err != nil {
		return nil, err
	}

	if err := publisher.DeclareTopicExchange(CartTopic); err != nil {
		return nil, err
	}
	return publisher, nil
}

// CartChanged implements store.Observer.
func (publisher *Publisher) CartChanged(cart store.Cart) {
	update := cartUpdate{
		UserID:     cart.UserID,
		Items:      cart.Items,
		TotalPrice: cart.TotalPrice,
	}
	body, err := json.Marshal(update)
	if err != nil {
		logger.WithError(err).Error("Could not marshal cart update")
		return
	}
	if err := publisher.PublishJSON(CartTopic, CartUpdatedRoutingKey, body); err != nil {
		logger.WithError(err).WithFields(loggrus.Fields{"userID": cart.UserID}).Error("Could not publish cart update")
	}
}
