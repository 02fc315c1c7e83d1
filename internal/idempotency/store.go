// Package idempotency makes order placement replay-safe. A client that never
// saw the response to a successful PlaceOrder can retry with the same
// idempotency key and receive the original order instead of creating a
// second one.
package idempotency

import (
	"encoding/json"
	"fmt"
	"time"

	"shopkart/internal/model"

	bolt "github.com/boltdb/bolt"
	"github.com/rs/zerolog"
)

const ordersBucket = "placed_orders"

// Store persists completed orders keyed by client idempotency key in an
// embedded BoltDB file. All operations are replay-safe.
type Store struct {
	db     *bolt.DB
	logger zerolog.Logger
}

// New opens (or creates) the BoltDB file at path and ensures the orders
// bucket exists.
func New(path string, logger zerolog.Logger) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open idempotency store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ordersBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise idempotency store: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "idempotency-store").Logger(),
	}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves the order previously stored under key. Returns nil when the
// key has never been used.
func (s *Store) Get(key string) (*model.Order, error) {
	var order model.Order
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(ordersBucket)).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &order)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read idempotency record")
		return nil, fmt.Errorf("failed to read idempotency record: %w", err)
	}

	if !found {
		return nil, nil
	}
	return &order, nil
}

// Put stores the order under key. If the key already holds an order the
// stored value wins and is returned, so concurrent retries converge on one
// result.
func (s *Store) Put(key string, order *model.Order) (*model.Order, error) {
	result := order

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ordersBucket))

		if existing := b.Get([]byte(key)); existing != nil {
			var stored model.Order
			if err := json.Unmarshal(existing, &stored); err != nil {
				return err
			}
			result = &stored
			return nil
		}

		data, err := json.Marshal(order)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to write idempotency record")
		return nil, fmt.Errorf("failed to write idempotency record: %w", err)
	}

	return result, nil
}
