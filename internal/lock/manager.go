package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds the manager's retry and expiry behaviour. The delay and the
// attempt budget are fixed rather than backed off, which keeps the worst-case
// wait deterministic: RetryCount * RetryDelay.
type Config struct {
	TTL        time.Duration
	RetryCount int
	RetryDelay time.Duration
}

// DefaultConfig returns the default lock configuration.
func DefaultConfig() Config {
	return Config{
		TTL:        3000 * time.Millisecond,
		RetryCount: 10,
		RetryDelay: 50 * time.Millisecond,
	}
}

// manager implements Manager over a Store and a Reserver.
type manager struct {
	store    Store
	reserver Reserver
	cfg      Config
	logger   zerolog.Logger
}

// NewManager creates a new lock manager.
func NewManager(store Store, reserver Reserver, cfg Config, logger zerolog.Logger) Manager {
	return &manager{
		store:    store,
		reserver: reserver,
		cfg:      cfg,
		logger:   logger.With().Str("component", "lock-manager").Logger(),
	}
}

// lockKey builds the store key for a product lock.
func lockKey(productID uuid.UUID) string {
	return fmt.Sprintf("lock:product:%s", productID)
}

// Acquire claims the product lock and reserves stock under it. The lock only
// guards the availability check; the reservation's own conditional update is
// the final backstop if the lock layer is bypassed.
func (m *manager) Acquire(ctx context.Context, productID uuid.UUID, quantity int) (*Token, error) {
	key := lockKey(productID)

	for attempt := 0; attempt < m.cfg.RetryCount; attempt++ {
		claimed, err := m.store.SetIfAbsent(ctx, key, uuid.NewString(), m.cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to claim lock %s: %w", key, err)
		}

		if claimed {
			reserved, err := m.reserver.Reserve(ctx, productID, quantity)
			if err != nil {
				// Keep no lock we cannot use.
				if delErr := m.store.Delete(ctx, key); delErr != nil {
					m.logger.Error().Err(delErr).Str("key", key).Msg("failed to release lock after reservation error")
				}
				return nil, err
			}

			if !reserved {
				m.logger.Debug().
					Str("key", key).
					Int("quantity", quantity).
					Msg("insufficient stock, lock released")
				if err := m.store.Delete(ctx, key); err != nil {
					m.logger.Error().Err(err).Str("key", key).Msg("failed to release lock after failed reservation")
				}
				return nil, nil
			}

			m.logger.Debug().
				Str("key", key).
				Int("attempt", attempt+1).
				Msg("lock acquired and stock reserved")

			return &Token{Key: key, ProductID: productID, Quantity: quantity}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.cfg.RetryDelay):
		}
	}

	m.logger.Debug().
		Str("key", key).
		Int("attempts", m.cfg.RetryCount).
		Msg("lock contended, retry budget exhausted")

	return nil, nil
}

// Release deletes the lock key. Expired or already-released locks delete as
// a no-op.
func (m *manager) Release(ctx context.Context, token *Token) error {
	if token == nil {
		return nil
	}
	if err := m.store.Delete(ctx, token.Key); err != nil {
		m.logger.Error().Err(err).Str("key", token.Key).Msg("failed to release lock")
		return fmt.Errorf("failed to release lock %s: %w", token.Key, err)
	}
	return nil
}
