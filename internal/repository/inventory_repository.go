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

// inventoryRepository implements the InventoryRepository interface using PostgreSQL.
type inventoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInventoryRepository creates a new PostgreSQL-backed inventory repository.
func NewInventoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) InventoryRepository {
	return &inventoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "inventory").Logger(),
	}
}

// Reserve conditionally decrements available stock. The stock >= quantity
// guard and the decrement are one statement, so two racing requests can never
// both pass the check. Affected rows tells the caller whether it won.
func (r *inventoryRepository) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE inventories
		SET stock = stock - $2,
		    reserved = reserved + $2,
		    updated_at = NOW()
		WHERE product_id = $1 AND stock >= $2
	`

	tag, err := r.pool.Exec(ctx, query, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Int("quantity", quantity).
			Msg("failed to reserve inventory")
		return false, fmt.Errorf("failed to reserve inventory: %w", err)
	}

	reserved := tag.RowsAffected() > 0
	if !reserved {
		r.logger.Debug().
			Str("product_id", productID.String()).
			Int("quantity", quantity).
			Msg("insufficient stock for reservation")
	}

	return reserved, nil
}

// ReleaseReservation moves reserved stock back to available. The guard on
// reserved >= quantity keeps a double release from fabricating stock.
func (r *inventoryRepository) ReleaseReservation(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE inventories
		SET stock = stock + $2,
		    reserved = reserved - $2,
		    updated_at = NOW()
		WHERE product_id = $1 AND reserved >= $2
	`

	_, err := r.pool.Exec(ctx, query, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Int("quantity", quantity).
			Msg("failed to release reservation")
		return fmt.Errorf("failed to release reservation: %w", err)
	}

	return nil
}

// GetStock retrieves the inventory record for a product.
func (r *inventoryRepository) GetStock(ctx context.Context, productID uuid.UUID) (*model.Inventory, error) {
	query := `
		SELECT product_id, shop_id, stock, reserved, location
		FROM inventories
		WHERE product_id = $1
	`

	var inv model.Inventory
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&inv.ProductID, &inv.ShopID, &inv.Stock, &inv.Reserved, &inv.Location,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", productID.String()).Msg("inventory record not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query inventory")
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}

	return &inv, nil
}
