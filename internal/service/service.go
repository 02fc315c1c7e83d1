package service

import (
	"context"

	"shopkart/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves all published products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// DiscountService defines operations for discount code management.
type DiscountService interface {
	// CreateDiscountCode creates a new discount code for a shop.
	CreateDiscountCode(ctx context.Context, req *model.CreateDiscountRequest) (*model.Discount, error)

	// ListByShop retrieves all active discount codes for a shop.
	ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]model.Discount, error)

	// GetDiscountAmount evaluates a discount code against priced line items.
	GetDiscountAmount(ctx context.Context, req *model.DiscountAmountRequest) (*model.DiscountQuote, error)

	// ListApplicableProducts retrieves the products a discount code covers.
	ListApplicableProducts(ctx context.Context, code string, shopID uuid.UUID, limit, offset int) ([]model.Product, error)

	// CancelDiscountCode reverses a user's redemption of a discount code.
	CancelDiscountCode(ctx context.Context, req *model.CancelDiscountRequest) error

	// DeleteDiscountCode removes a discount code entirely.
	DeleteDiscountCode(ctx context.Context, code string, shopID uuid.UUID) error
}

// CheckoutService defines the checkout orchestration operations.
type CheckoutService interface {
	// Review prices a multi-shop checkout without committing anything.
	Review(ctx context.Context, req *model.CheckoutReviewRequest) (*model.CheckoutReview, error)

	// PlaceOrder turns a reviewed checkout into a committed order, or into a
	// fully rolled-back no-op. A non-empty idempotencyKey makes retries
	// return the originally created order.
	PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest, idempotencyKey string) (*model.Order, error)

	// GetOrderByID retrieves a placed order with its groups and items.
	GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
