package repository

import (
	"context"

	"shopkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all published products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByShop retrieves published products belonging to a shop.
	GetByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]model.Product, error)

	// GetByIDs retrieves the published subset of the given product IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// CheckProductsAvailable re-prices the requested line items from the
	// catalogue, keeping only published products. Unknown or unpublished
	// products are dropped from the result.
	CheckProductsAvailable(ctx context.Context, items []model.LineItem) ([]model.LineItem, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// FindActiveByID retrieves a cart only if it is in the active state.
	// Returns nil when the cart does not exist or is not active.
	FindActiveByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)
}

// DiscountRepository defines the interface for discount data access operations.
type DiscountRepository interface {
	// Create inserts a new discount rule.
	Create(ctx context.Context, discount *model.Discount) error

	// FindByCode retrieves a discount by (code, shop). Returns nil when no
	// such discount exists.
	FindByCode(ctx context.Context, code string, shopID uuid.UUID) (*model.Discount, error)

	// ListByShop retrieves all active discounts for a shop with pagination.
	ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]model.Discount, error)

	// DeleteByCode removes a discount rule entirely.
	DeleteByCode(ctx context.Context, code string, shopID uuid.UUID) error

	// UserUsageCount returns how many times a user has redeemed a discount.
	UserUsageCount(ctx context.Context, discountID, userID uuid.UUID) (int, error)

	// Redeem atomically decrements the remaining uses of a discount and
	// increments the user's ledger entry within the given transaction.
	Redeem(ctx context.Context, tx pgx.Tx, code string, shopID, userID uuid.UUID) error

	// CancelRedemption reverses a prior redemption: increments the remaining
	// uses by one and decrements the user's ledger entry. A missing ledger
	// entry makes this a no-op.
	CancelRedemption(ctx context.Context, code string, shopID, userID uuid.UUID) error
}

// InventoryRepository defines the interface for stock data access operations.
type InventoryRepository interface {
	// Reserve conditionally decrements available stock for a product.
	// Returns true when the decrement happened, false when stock was
	// insufficient. The check and the decrement are a single atomic update.
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)

	// ReleaseReservation moves reserved stock back to available, compensating
	// a reservation whose checkout did not commit.
	ReleaseReservation(ctx context.Context, productID uuid.UUID, quantity int) error

	// GetStock retrieves the inventory record for a product. Returns nil when
	// no record exists.
	GetStock(ctx context.Context, productID uuid.UUID) (*model.Inventory, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts an order with its groups and items within the
	// provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order with its groups and items. Returns nil when
	// the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
