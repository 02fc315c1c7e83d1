package repository

import (
	"context"
	"fmt"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// FindActiveByID retrieves a cart only if it is in the active state.
func (r *cartRepository) FindActiveByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, state, created_at, updated_at
		FROM carts
		WHERE id = $1 AND state = 'active'
	`

	var cart model.Cart
	var state string
	err := r.pool.QueryRow(ctx, query, cartID).Scan(
		&cart.ID, &cart.UserID, &state, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("cart_id", cartID.String()).Msg("active cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	cart.State = model.CartState(state)

	return &cart, nil
}
