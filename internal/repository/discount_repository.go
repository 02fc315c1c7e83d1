package repository

import (
	"context"
	"errors"
	"fmt"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// discountRepository implements the DiscountRepository interface using PostgreSQL.
type discountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(pool *pgxpool.Pool, logger zerolog.Logger) DiscountRepository {
	return &discountRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "discount").Logger(),
	}
}

// Create inserts a new discount rule.
func (r *discountRepository) Create(ctx context.Context, d *model.Discount) error {
	query := `
		INSERT INTO discounts (
			id, shop_id, code, name, description, type, value, max_value,
			start_date, end_date, max_uses, uses_count, max_uses_per_user,
			min_order_value, applies_to, product_ids, is_active,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	var maxValue *float64
	if d.MaxValue != nil {
		v, _ := d.MaxValue.Float64()
		maxValue = &v
	}
	value, _ := d.Value.Float64()
	minOrder, _ := d.MinOrderValue.Float64()

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.ShopID, d.Code, d.Name, d.Description, string(d.Type), value, maxValue,
		d.StartDate, d.EndDate, d.MaxUses, d.UsesCount, d.MaxUsesPerUser,
		minOrder, string(d.AppliesTo), d.ProductIDs, d.IsActive,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn().
				Str("code", d.Code).
				Str("shop_id", d.ShopID.String()).
				Msg("discount code already exists")
			return model.ErrDiscountCodeExists
		}
		r.logger.Error().Err(err).Str("code", d.Code).Msg("failed to create discount")
		return fmt.Errorf("failed to create discount: %w", err)
	}

	r.logger.Debug().Str("code", d.Code).Msg("discount created")

	return nil
}

// FindByCode retrieves a discount by (code, shop).
func (r *discountRepository) FindByCode(ctx context.Context, code string, shopID uuid.UUID) (*model.Discount, error) {
	query := `
		SELECT id, shop_id, code, name, description, type, value, max_value,
		       start_date, end_date, max_uses, uses_count, max_uses_per_user,
		       min_order_value, applies_to, product_ids, is_active,
		       created_at, updated_at
		FROM discounts
		WHERE code = $1 AND shop_id = $2
	`

	row := r.pool.QueryRow(ctx, query, code, shopID)
	d, err := scanDiscount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("discount not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query discount")
		return nil, fmt.Errorf("failed to query discount: %w", err)
	}

	return &d, nil
}

// ListByShop retrieves all active discounts for a shop with pagination.
func (r *discountRepository) ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]model.Discount, error) {
	query := `
		SELECT id, shop_id, code, name, description, type, value, max_value,
		       start_date, end_date, max_uses, uses_count, max_uses_per_user,
		       min_order_value, applies_to, product_ids, is_active,
		       created_at, updated_at
		FROM discounts
		WHERE shop_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, shopID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("shop_id", shopID.String()).Msg("failed to query discounts")
		return nil, fmt.Errorf("failed to query discounts: %w", err)
	}
	defer rows.Close()

	var discounts []model.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan discount row")
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		discounts = append(discounts, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating discount rows")
		return nil, fmt.Errorf("error iterating discounts: %w", err)
	}

	return discounts, nil
}

// DeleteByCode removes a discount rule entirely.
func (r *discountRepository) DeleteByCode(ctx context.Context, code string, shopID uuid.UUID) error {
	query := `DELETE FROM discounts WHERE code = $1 AND shop_id = $2`

	tag, err := r.pool.Exec(ctx, query, code, shopID)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to delete discount")
		return fmt.Errorf("failed to delete discount: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrDiscountNotFound
	}

	r.logger.Debug().Str("code", code).Msg("discount deleted")

	return nil
}

// UserUsageCount returns how many times a user has redeemed a discount.
func (r *discountRepository) UserUsageCount(ctx context.Context, discountID, userID uuid.UUID) (int, error) {
	query := `
		SELECT used_count
		FROM discount_usages
		WHERE discount_id = $1 AND user_id = $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, discountID, userID).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		r.logger.Error().Err(err).
			Str("discount_id", discountID.String()).
			Str("user_id", userID.String()).
			Msg("failed to query discount usage")
		return 0, fmt.Errorf("failed to query discount usage: %w", err)
	}

	return count, nil
}

// Redeem atomically decrements the remaining uses of a discount and upserts
// the user's ledger entry. Both statements run in the caller's transaction so
// a failed order commit rolls the redemption back with it. The guarded
// decrement (max_uses > 0) is the last defence against over-redemption.
func (r *discountRepository) Redeem(ctx context.Context, tx pgx.Tx, code string, shopID, userID uuid.UUID) error {
	decrement := `
		UPDATE discounts
		SET max_uses = max_uses - 1,
		    uses_count = uses_count + 1,
		    updated_at = NOW()
		WHERE code = $1 AND shop_id = $2 AND max_uses > 0
		RETURNING id
	`

	var discountID uuid.UUID
	err := tx.QueryRow(ctx, decrement, code, shopID).Scan(&discountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Warn().Str("code", code).Msg("discount exhausted during redemption")
			return model.ErrDiscountExhausted
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to redeem discount")
		return fmt.Errorf("failed to redeem discount: %w", err)
	}

	ledger := `
		INSERT INTO discount_usages (discount_id, user_id, used_count, last_used_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (discount_id, user_id)
		DO UPDATE SET used_count = discount_usages.used_count + 1, last_used_at = NOW()
	`

	if _, err := tx.Exec(ctx, ledger, discountID, userID); err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to record discount usage")
		return fmt.Errorf("failed to record discount usage: %w", err)
	}

	r.logger.Debug().
		Str("code", code).
		Str("user_id", userID.String()).
		Msg("discount redeemed")

	return nil
}

// CancelRedemption reverses a prior redemption. Ledger rows at zero are
// deleted rather than kept. Without a matching ledger entry nothing happens.
func (r *discountRepository) CancelRedemption(ctx context.Context, code string, shopID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ledger := `
		UPDATE discount_usages
		SET used_count = used_count - 1
		WHERE discount_id = (SELECT id FROM discounts WHERE code = $1 AND shop_id = $2)
		  AND user_id = $3 AND used_count > 0
	`

	tag, err := tx.Exec(ctx, ledger, code, shopID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to revert discount usage")
		return fmt.Errorf("failed to revert discount usage: %w", err)
	}

	// No prior redemption: restoring uses would inflate the budget.
	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("code", code).
			Str("user_id", userID.String()).
			Msg("no redemption to cancel")
		return nil
	}

	restore := `
		UPDATE discounts
		SET max_uses = max_uses + 1,
		    uses_count = uses_count - 1,
		    updated_at = NOW()
		WHERE code = $1 AND shop_id = $2
	`

	if _, err := tx.Exec(ctx, restore, code, shopID); err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to restore discount uses")
		return fmt.Errorf("failed to restore discount uses: %w", err)
	}

	cleanup := `
		DELETE FROM discount_usages
		WHERE discount_id = (SELECT id FROM discounts WHERE code = $1 AND shop_id = $2)
		  AND user_id = $3 AND used_count = 0
	`

	if _, err := tx.Exec(ctx, cleanup, code, shopID, userID); err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to clean up discount usage")
		return fmt.Errorf("failed to clean up discount usage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to commit redemption cancellation")
		return fmt.Errorf("failed to commit redemption cancellation: %w", err)
	}

	r.logger.Debug().
		Str("code", code).
		Str("user_id", userID.String()).
		Msg("discount redemption cancelled")

	return nil
}

// scanDiscount scans a discount row. Monetary columns are stored as numeric
// and read through float64 before conversion to decimal.
func scanDiscount(row pgx.Row) (model.Discount, error) {
	var d model.Discount
	var dType, appliesTo string
	var value, minOrder float64
	var maxValue *float64

	err := row.Scan(
		&d.ID, &d.ShopID, &d.Code, &d.Name, &d.Description, &dType, &value, &maxValue,
		&d.StartDate, &d.EndDate, &d.MaxUses, &d.UsesCount, &d.MaxUsesPerUser,
		&minOrder, &appliesTo, &d.ProductIDs, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return model.Discount{}, err
	}

	d.Type = model.DiscountType(dType)
	d.AppliesTo = model.DiscountScope(appliesTo)
	d.Value = decimal.NewFromFloat(value)
	d.MinOrderValue = decimal.NewFromFloat(minOrder)
	if maxValue != nil {
		mv := decimal.NewFromFloat(*maxValue)
		d.MaxValue = &mv
	}

	return d, nil
}
