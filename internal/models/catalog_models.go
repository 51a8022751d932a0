package models

import "time"

// Product is a sellable menu item.
type Product struct {
	ID        int64         `json:"id" db:"id"`
	Category  string        `json:"category" db:"category"`
	Name      string        `json:"name" db:"name" binding:"required"`
	BasePrice float64       `json:"base_price" db:"base_price" binding:"required,gte=0"`
	Active    bool          `json:"active" db:"active"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
	Sizes     []ProductSize `json:"sizes,omitempty"`
}

// ProductSize is an optional size variant; its modifier is added to the
// product base price when the item is put in a cart.
type ProductSize struct {
	ID            int64   `json:"id" db:"id"`
	ProductID     int64   `json:"product_id" db:"product_id"`
	Name          string  `json:"name" db:"name" binding:"required"`
	PriceModifier float64 `json:"price_modifier" db:"price_modifier"`
}
