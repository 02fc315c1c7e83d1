package repository

import (
	"context"
	"fmt"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts an order with its groups and items within the provided
// transaction. Group and item inserts are batched.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	orderQuery := `
		INSERT INTO orders (
			id, user_id, cart_id, total_price, total_discount, fee_ship,
			total_checkout, shipping, payment, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	totalPrice, _ := order.TotalPrice.Float64()
	totalDiscount, _ := order.TotalDiscount.Float64()
	feeShip, _ := order.FeeShip.Float64()
	totalCheckout, _ := order.TotalCheckout.Float64()

	_, err := tx.Exec(ctx, orderQuery,
		order.ID, order.UserID, order.CartID, totalPrice, totalDiscount, feeShip,
		totalCheckout, order.Shipping, order.Payment, string(order.Status),
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	groupQuery := `
		INSERT INTO order_groups (id, order_id, shop_id, discount_code, raw_price, discount_amount, price_after_discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	itemQuery := `
		INSERT INTO order_items (id, group_id, product_id, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	queued := 0
	for gi := range order.Groups {
		g := &order.Groups[gi]
		rawPrice, _ := g.RawPrice.Float64()
		discountAmount, _ := g.DiscountAmount.Float64()
		afterDiscount, _ := g.PriceAfterDiscount.Float64()

		batch.Queue(groupQuery, g.ID, g.OrderID, g.ShopID, g.DiscountCode, rawPrice, discountAmount, afterDiscount)
		queued++

		for _, item := range g.Items {
			price, _ := item.Price.Float64()
			batch.Queue(itemQuery, item.ID, item.GroupID, item.ProductID, price, item.Quantity)
			queued++
		}
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < queued; i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order group or item")
			return fmt.Errorf("failed to create order group or item: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("group_count", len(order.Groups)).
		Msg("order created successfully")

	return nil
}

// GetByID retrieves an order with its groups and items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	orderQuery := `
		SELECT id, user_id, cart_id, total_price, total_discount, fee_ship,
		       total_checkout, shipping, payment, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	var totalPrice, totalDiscount, feeShip, totalCheckout float64
	var status string
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID, &order.UserID, &order.CartID, &totalPrice, &totalDiscount, &feeShip,
		&totalCheckout, &order.Shipping, &order.Payment, &status,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	order.TotalPrice = decimal.NewFromFloat(totalPrice)
	order.TotalDiscount = decimal.NewFromFloat(totalDiscount)
	order.FeeShip = decimal.NewFromFloat(feeShip)
	order.TotalCheckout = decimal.NewFromFloat(totalCheckout)
	order.Status = model.OrderStatus(status)

	groups, err := r.loadGroups(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Groups = groups

	return &order, nil
}

// loadGroups retrieves the order groups and their items.
func (r *orderRepository) loadGroups(ctx context.Context, orderID uuid.UUID) ([]model.OrderGroup, error) {
	groupQuery := `
		SELECT id, order_id, shop_id, discount_code, raw_price, discount_amount, price_after_discount
		FROM order_groups
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, groupQuery, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order groups")
		return nil, fmt.Errorf("failed to query order groups: %w", err)
	}
	defer rows.Close()

	var groups []model.OrderGroup
	for rows.Next() {
		var g model.OrderGroup
		var rawPrice, discountAmount, afterDiscount float64
		err := rows.Scan(&g.ID, &g.OrderID, &g.ShopID, &g.DiscountCode, &rawPrice, &discountAmount, &afterDiscount)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order group row")
			return nil, fmt.Errorf("failed to scan order group: %w", err)
		}
		g.RawPrice = decimal.NewFromFloat(rawPrice)
		g.DiscountAmount = decimal.NewFromFloat(discountAmount)
		g.PriceAfterDiscount = decimal.NewFromFloat(afterDiscount)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order group rows")
		return nil, fmt.Errorf("error iterating order groups: %w", err)
	}

	itemQuery := `
		SELECT i.id, i.group_id, i.product_id, i.price, i.quantity
		FROM order_items i
		JOIN order_groups g ON g.id = i.group_id
		WHERE g.order_id = $1
		ORDER BY i.id
	`

	itemRows, err := r.pool.Query(ctx, itemQuery, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	itemsByGroup := make(map[uuid.UUID][]model.OrderItem)
	for itemRows.Next() {
		var item model.OrderItem
		var price float64
		err := itemRows.Scan(&item.ID, &item.GroupID, &item.ProductID, &price, &item.Quantity)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Price = decimal.NewFromFloat(price)
		itemsByGroup[item.GroupID] = append(itemsByGroup[item.GroupID], item)
	}
	if err := itemRows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	for i := range groups {
		groups[i].Items = itemsByGroup[groups[i].ID]
	}

	return groups, nil
}
