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

package store

import (
	"encoding/json"
	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
	"sync"
)

// cartRecordKey is the fixed name of the persisted cart record.
const cartRecordKey = "cart"

// Storage is the durable key/value byte store behind the cart. Load returns
// nil, nil when the key holds nothing.
type Storage interface {
	Save(key string, value []byte) error
	Load(key string) ([]byte, error)
}

// cartRecord is the durable subset of the cart. The transient fields must
// never survive a reload, so they are not part of this shape.
type cartRecord struct {
	UserID string     `json:"userID"`
	Items  []CartItem `json:"items"`
}

func loadCartRecord(storage Storage) (*cartRecord, error) {
	payload, err := storage.Load(cartRecordKey)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	record := &cartRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, errors.Wrap(err, "corrupt cart record")
	}
	return record, nil
}

// persistenceObserver writes the durable fields through to storage after
// every committed transition. Failures are logged, a broken store never
// breaks a mutation.
type persistenceObserver struct {
	storage Storage
}

func (observer *persistenceObserver) CartChanged(cart Cart) {
	record := cartRecord{UserID: cart.UserID, Items: cart.Items}
	payload, err := json.Marshal(record)
	if err != nil {
		logger.WithError(err).Error("Could not marshal cart record")
		return
	}
	if err := observer.storage.Save(cartRecordKey, payload); err != nil {
		logger.WithError(err).Warn("Could not persist cart record")
	}
}

// RedisStorage keeps the cart record in redis behind a connection pool.
type RedisStorage struct {
	connPool *redis.Pool
}

// NewRedisStorage dials redis and pings it once. Returns nil when redis is
// not reachable, callers may fall back to memory.
func NewRedisStorage(cacheAddress string, cachePort string) *RedisStorage {
	connectionUri := cacheAddress + ":" + cachePort
	pool := redis.Pool{
		MaxIdle:   80,
		MaxActive: 12000,
		Dial: func() (redis.Conn, error) {
			c, err := redis.Dial("tcp", connectionUri)
			if err != nil {
				logger.WithError(err).Error("Error appeared on dialing redis!")
			}
			return c, err
		},
	}
	conn := pool.Get()
	defer func(conn redis.Conn) {
		err := conn.Close()
		if err != nil {
			logger.WithError(err).Warn("connection to redis could not be successfully closed")
		}
	}(conn)
	if _, err := conn.Do("PING"); err != nil {
		return nil
	}
	return &RedisStorage{connPool: &pool}
}

func (storage *RedisStorage) Save(key string, value []byte) error {
	// get a client out of the connection pool
	client := storage.connPool.Get()
	defer func(client redis.Conn) {
		err := client.Close()
		if err != nil {
			logger.WithError(err).Warn("connection to redis could not be successfully closed")
		}
	}(client)

	_, err := client.Do("SET", key, value)
	return err
}

func (storage *RedisStorage) Load(key string) ([]byte, error) {
	// get a client out of the connection pool
	client := storage.connPool.Get()
	defer func(client redis.Conn) {
		err := client.Close()
		if err != nil {
			logger.WithError(err).Warn("connection to redis could not be successfully closed")
		}
	}(client)

	reply, err := client.Do("GET", key)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, nil
	}
	return redis.Bytes(reply, nil)
}

// MemoryStorage is an in-process Storage for tests and for running without
// redis. The cart then only lives as long as the process.
type MemoryStorage struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: map[string][]byte{}}
}

func (storage *MemoryStorage) Save(key string, value []byte) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	storage.records[key] = append([]byte(nil), value...)
	return nil
}

func (storage *MemoryStorage) Load(key string) ([]byte, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	value, ok := storage.records[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}
