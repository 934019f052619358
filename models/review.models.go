package models

import "time"

// Review is a customer's rating of a product
type Review struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"product_id"`
	UserID             string    `json:"user_id"`
	Rating             int       `json:"rating"`
	Title              *string   `json:"title"`
	Comment            *string   `json:"comment"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	HelpfulCount       int       `json:"helpful_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	ReviewerName string `json:"reviewer_name,omitempty"`
}

// ReviewStats aggregates the ratings of one product
type ReviewStats struct {
	TotalReviews  int         `json:"total_reviews"`
	AverageRating float64     `json:"average_rating"`
	Distribution  map[int]int `json:"distribution"`
}
