package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a placed order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderReturned   OrderStatus = "returned"
)

// Order is a committed multi-shop checkout. It only ever exists fully formed:
// all locks were held and all inventory reserved before the insert.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	CartID        uuid.UUID       `json:"cartId" db:"cart_id"`
	TotalPrice    decimal.Decimal `json:"totalPrice" db:"total_price"`
	TotalDiscount decimal.Decimal `json:"totalDiscount" db:"total_discount"`
	FeeShip       decimal.Decimal `json:"feeShip" db:"fee_ship"`
	TotalCheckout decimal.Decimal `json:"totalCheckout" db:"total_checkout"`
	Shipping      json.RawMessage `json:"shipping,omitempty" db:"shipping"`
	Payment       json.RawMessage `json:"payment,omitempty" db:"payment"`
	Status        OrderStatus     `json:"status" db:"status"`
	Groups        []OrderGroup    `json:"groups"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderGroup is the persisted snapshot of one shop's slice of a checkout.
type OrderGroup struct {
	ID                 uuid.UUID       `json:"-" db:"id"`
	OrderID            uuid.UUID       `json:"-" db:"order_id"`
	ShopID             uuid.UUID       `json:"shopId" db:"shop_id"`
	DiscountCode       *string         `json:"discountCode,omitempty" db:"discount_code"`
	RawPrice           decimal.Decimal `json:"rawPrice" db:"raw_price"`
	DiscountAmount     decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	PriceAfterDiscount decimal.Decimal `json:"priceAfterDiscount" db:"price_after_discount"`
	Items              []OrderItem     `json:"items"`
}

// OrderItem is one persisted line item within an order group.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	GroupID   uuid.UUID       `json:"-" db:"group_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// OrderGroupRequest is one shop's slice of a checkout request.
type OrderGroupRequest struct {
	ShopID        uuid.UUID  `json:"shopId"`
	DiscountCodes []string   `json:"discountCodes,omitempty"`
	Items         []LineItem `json:"items"`
}

// CheckoutReviewRequest prices a cart without committing anything.
type CheckoutReviewRequest struct {
	CartID uuid.UUID           `json:"cartId"`
	UserID uuid.UUID           `json:"userId"`
	Groups []OrderGroupRequest `json:"groups"`
}

// CheckoutTotals aggregates the totals across all groups of a checkout.
type CheckoutTotals struct {
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	FeeShip       decimal.Decimal `json:"feeShip"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	TotalCheckout decimal.Decimal `json:"totalCheckout"`
}

// PricedGroup is the review result for one shop order group. It exists only
// for the duration of a checkout request and is folded into the Order.
type PricedGroup struct {
	ShopID             uuid.UUID       `json:"shopId"`
	DiscountCodes      []string        `json:"discountCodes,omitempty"`
	RawPrice           decimal.Decimal `json:"rawPrice"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	PriceAfterDiscount decimal.Decimal `json:"priceAfterDiscount"`
	Items              []LineItem      `json:"items"`
}

// CheckoutReview is the response of the review operation.
type CheckoutReview struct {
	Groups []PricedGroup  `json:"groups"`
	Totals CheckoutTotals `json:"totals"`
}

// PlaceOrderRequest commits a reviewed checkout into an order.
type PlaceOrderRequest struct {
	CartID   uuid.UUID           `json:"cartId"`
	UserID   uuid.UUID           `json:"userId"`
	Groups   []OrderGroupRequest `json:"groups"`
	Shipping json.RawMessage     `json:"shipping,omitempty"`
	Payment  json.RawMessage     `json:"payment,omitempty"`
}
