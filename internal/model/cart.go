package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartState is the lifecycle state of a shopping cart.
type CartState string

const (
	CartActive    CartState = "active"
	CartCompleted CartState = "completed"
	CartFailed    CartState = "failed"
	CartPending   CartState = "pending"
)

// Cart is a user's shopping cart. Checkout only accepts active carts.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	State     CartState `json:"state" db:"state"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// LineItem is one priced product line within a checkout group.
type LineItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price multiplied by quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
