package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType determines how a discount value is interpreted.
type DiscountType string

const (
	// DiscountFixedAmount subtracts a fixed monetary value.
	DiscountFixedAmount DiscountType = "fixed_amount"
	// DiscountPercentage subtracts a percentage of the order total.
	DiscountPercentage DiscountType = "percentage"
)

// DiscountScope determines which products a discount applies to.
type DiscountScope string

const (
	AppliesToAllProducts      DiscountScope = "all_products"
	AppliesToSpecificProducts DiscountScope = "specific_products"
)

// Discount is a shop-scoped, time-bounded promotional code with usage caps.
// MaxUses is the remaining global use count and is decremented on every
// successful redemption.
type Discount struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	ShopID         uuid.UUID        `json:"shopId" db:"shop_id"`
	Code           string           `json:"code" db:"code"`
	Name           string           `json:"name" db:"name"`
	Description    string           `json:"description" db:"description"`
	Type           DiscountType     `json:"type" db:"type"`
	Value          decimal.Decimal  `json:"value" db:"value"`
	MaxValue       *decimal.Decimal `json:"maxValue,omitempty" db:"max_value"`
	StartDate      time.Time        `json:"startDate" db:"start_date"`
	EndDate        time.Time        `json:"endDate" db:"end_date"`
	MaxUses        int              `json:"maxUses" db:"max_uses"`
	UsesCount      int              `json:"usesCount" db:"uses_count"`
	MaxUsesPerUser int              `json:"maxUsesPerUser" db:"max_uses_per_user"`
	MinOrderValue  decimal.Decimal  `json:"minOrderValue" db:"min_order_value"`
	AppliesTo      DiscountScope    `json:"appliesTo" db:"applies_to"`
	ProductIDs     []uuid.UUID      `json:"productIds,omitempty" db:"product_ids"`
	IsActive       bool             `json:"isActive" db:"is_active"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
}

// DiscountUsage is one row of the per-user redemption ledger.
type DiscountUsage struct {
	DiscountID uuid.UUID `json:"discountId" db:"discount_id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	UsedCount  int       `json:"usedCount" db:"used_count"`
	LastUsedAt time.Time `json:"lastUsedAt" db:"last_used_at"`
}

// CreateDiscountRequest is the payload for creating a discount code.
type CreateDiscountRequest struct {
	ShopID         uuid.UUID        `json:"shopId"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Type           DiscountType     `json:"type"`
	Value          decimal.Decimal  `json:"value"`
	MaxValue       *decimal.Decimal `json:"maxValue,omitempty"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        time.Time        `json:"endDate"`
	MaxUses        int              `json:"maxUses"`
	MaxUsesPerUser int              `json:"maxUsesPerUser"`
	MinOrderValue  decimal.Decimal  `json:"minOrderValue"`
	AppliesTo      DiscountScope    `json:"appliesTo"`
	ProductIDs     []uuid.UUID      `json:"productIds,omitempty"`
	IsActive       bool             `json:"isActive"`
}

// DiscountAmountRequest asks for the discount a code would yield on a set of
// priced line items.
type DiscountAmountRequest struct {
	Code   string      `json:"code"`
	ShopID uuid.UUID   `json:"shopId"`
	UserID uuid.UUID   `json:"userId"`
	Items  []LineItem  `json:"items"`
}

// DiscountQuote is the evaluator's verdict for an eligible discount.
type DiscountQuote struct {
	TotalOrder decimal.Decimal `json:"totalOrder"`
	Discount   decimal.Decimal `json:"discount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// CancelDiscountRequest reverses a prior redemption for a user.
type CancelDiscountRequest struct {
	Code   string    `json:"code"`
	ShopID uuid.UUID `json:"shopId"`
	UserID uuid.UUID `json:"userId"`
}
