package models

import (
	"time"

	"go-storefront/pricing"
)

// CartItem represents one line in a user's cart, with the product fields
// needed to render and price it
type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name          string        `json:"name,omitempty"`
	Price         pricing.Money `json:"price"`
	ImageURL      string        `json:"image_url,omitempty"`
	StockQuantity int           `json:"stock_quantity"`
	BusinessName  string        `json:"business_name,omitempty"`
	LineTotal     pricing.Money `json:"line_total"`
}

// Cart represents a user's shopping cart with its totals
type Cart struct {
	Items     []CartItem     `json:"items"`
	ItemCount int            `json:"itemCount"`
	Totals    pricing.Totals `json:"totals"`
}
