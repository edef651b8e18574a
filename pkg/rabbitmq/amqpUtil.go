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

package rabbitmq

import (
	"github.com/streadway/amqp"
)

// AmqpService bundles one connection and channel to the broker.
type AmqpService struct {
	AmqpChannel *amqp.Channel
	AmqpConn    *amqp.Connection
	RabbitURL   string
}

func (service *AmqpService) InitAmqpConnection() error {
	conn, err := amqp.Dial(service.RabbitURL)
	if err != nil {
		return err
	}

	// connection and channel will be closed in main
	service.AmqpConn = conn

	service.AmqpChannel, err = conn.Channel()
	if err != nil {
		return err
	}

	return nil
}

// DeclareTopicExchange makes sure the topic exchange exists before the
// first publish.
func (service *AmqpService) DeclareTopicExchange(topicName string) error {
	return service.AmqpChannel.ExchangeDeclare(
		topicName, // name
		"topic",   // type
		true,      // durable
		false,     // auto-deleted
		false,     // internal
		false,     // no-wait
		nil,       // arguments
	)
}

// PublishJSON broadcasts a persistent json message on the topic exchange.
func (service *AmqpService) PublishJSON(topicName string, routingKey string, body []byte) error {
	return service.AmqpChannel.Publish(
		topicName,  // exchange
		routingKey, // routing key
		true,       // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
}

// Close tears channel and connection down, channel first.
func (service *AmqpService) Close() error {
	if service.AmqpChannel != nil {
		if err := service.AmqpChannel.Close(); err != nil {
			return err
		}
	}
	if service.AmqpConn != nil {
		return service.AmqpConn.Close()
	}
	return nil
}
