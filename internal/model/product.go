package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalogue product offered by a shop.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ShopID      uuid.UUID       `json:"shopId" db:"shop_id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	IsPublished bool            `json:"isPublished" db:"is_published"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// Inventory tracks per-product stock. Stock never goes negative; the
// reservation path decrements it with a conditional update.
type Inventory struct {
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	ShopID    uuid.UUID `json:"shopId" db:"shop_id"`
	Stock     int       `json:"stock" db:"stock"`
	Reserved  int       `json:"reserved" db:"reserved"`
	Location  string    `json:"location" db:"location"`
}
