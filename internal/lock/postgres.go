package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresStore implements Store on a product_locks table. The upsert claims
// the key when it is absent or its expiry has passed, in one statement, so
// the create-if-absent semantics hold across application instances.
type postgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore creates a PostgreSQL-backed lock store.
func NewPostgresStore(pool *pgxpool.Pool, logger zerolog.Logger) Store {
	return &postgresStore{
		pool:   pool,
		logger: logger.With().Str("component", "lock-store").Logger(),
	}
}

// SetIfAbsent claims the key unless a live (unexpired) holder exists.
func (s *postgresStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO product_locks (key, token, expires_at)
		VALUES ($1, $2, NOW() + $3::interval)
		ON CONFLICT (key) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
		WHERE product_locks.expires_at <= NOW()
	`

	interval := fmt.Sprintf("%d milliseconds", ttl.Milliseconds())
	tag, err := s.pool.Exec(ctx, query, key, value, interval)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to claim lock key")
		return false, fmt.Errorf("failed to claim lock key: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes the key. Absent keys delete as a no-op.
func (s *postgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM product_locks WHERE key = $1`, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to delete lock key")
		return fmt.Errorf("failed to delete lock key: %w", err)
	}
	return nil
}
