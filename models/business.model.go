package models

import (
	"time"

	"go-storefront/pricing"
)

// BusinessProfile is the seller identity owned by a business_owner user
type BusinessProfile struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	BusinessName        string    `json:"business_name"`
	BusinessDescription *string   `json:"business_description"`
	BusinessAddress     *string   `json:"business_address"`
	BusinessPhone       *string   `json:"business_phone"`
	BusinessEmail       *string   `json:"business_email"`
	TaxID               *string   `json:"tax_id"`
	IsVerified          bool      `json:"is_verified"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// BusinessAnalytics summarizes a seller's catalog and sales
type BusinessAnalytics struct {
	TotalProducts   int           `json:"total_products"`
	TotalOrderItems int           `json:"total_order_items"`
	Revenue         pricing.Money `json:"revenue"`
	AverageRating   float64       `json:"average_rating"`
	TotalReviews    int           `json:"total_reviews"`
}
