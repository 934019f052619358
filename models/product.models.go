package models

import (
	"time"

	"go-storefront/pricing"
)

// Product represents a catalog entry, joined with its category and seller
type Product struct {
	ID               string         `json:"id"`
	BusinessID       string         `json:"business_id"`
	CategoryID       string         `json:"category_id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Price            pricing.Money  `json:"price"`
	OriginalPrice    *pricing.Money `json:"original_price"`
	ImageURL         string         `json:"image_url"`
	AdditionalImages []string       `json:"additional_images"`
	Features         []string       `json:"features"`
	StockQuantity    int            `json:"stock_quantity"`
	IsActive         bool           `json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	CategoryName string `json:"category_name"`
	BusinessName string `json:"business_name"`
	IsVerified   bool   `json:"is_verified"`
}

// InStock reports whether at least qty units can be sold
func (p *Product) InStock(qty int) bool {
	return p.IsActive && p.StockQuantity >= qty
}
