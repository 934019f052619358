package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"go-storefront/clock"
	"go-storefront/database"
	"go-storefront/database/query"
	"go-storefront/models"
)

// DefaultReviewLimit is the page size of review listings
const DefaultReviewLimit = 10

// ReviewInput is the body of a review creation request
type ReviewInput struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Comment *string `json:"comment"`
}

// ReviewUpdate changes the fields that are set
type ReviewUpdate struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Comment *string `json:"comment"`
}

// ReviewService manages product reviews and helpfulness votes
type ReviewService struct {
	db    *sql.DB
	clock clock.Clock
}

// NewReviewService creates a ReviewService
func NewReviewService(db *sql.DB, clk clock.Clock) *ReviewService {
	return &ReviewService{db: db, clock: clk}
}

func reviewQuery() *query.Builder {
	return query.From("product_reviews r").
		Select("r.id", "r.product_id", "r.user_id", "r.rating", "r.title", "r.comment",
			"r.is_verified_purchase", "r.helpful_count", "r.created_at", "r.updated_at", "u.full_name").
		Join("JOIN users u ON u.id = r.user_id")
}

func scanReview(row rowScanner) (*models.Review, error) {
	var r models.Review
	var title, comment sql.NullString
	err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &title, &comment,
		&r.IsVerifiedPurchase, &r.HelpfulCount, &r.CreatedAt, &r.UpdatedAt, &r.ReviewerName)
	if err != nil {
		return nil, err
	}
	r.Title = stringPtr(title)
	r.Comment = stringPtr(comment)
	return &r, nil
}

func (s *ReviewService) get(ctx context.Context, id string) (*models.Review, error) {
	stmt := reviewQuery().Where(query.Eq("r.id", id)).Build()
	r, err := scanReview(s.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...))
	if isNoRows(err) {
		return nil, notFound("review")
	}
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}
	return r, nil
}

// Create adds the user's review of a product. A review counts as a verified
// purchase when the user has a delivered or paid order containing the product.
func (s *ReviewService) Create(ctx context.Context, userID, productID string, input ReviewInput) (*models.Review, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)", productID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, notFound("product")
	}

	var verified bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = ? AND oi.product_id = ?
				AND (o.status = ? OR o.payment_status = ?)
		)`, userID, productID, models.OrderDelivered, models.PaymentPaid).Scan(&verified)
	if err != nil {
		return nil, fmt.Errorf("check purchase: %w", err)
	}

	id := uuid.NewString()
	now := s.clock.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO product_reviews (id, product_id, user_id, rating, title, comment, is_verified_purchase, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, productID, userID, input.Rating, nullString(input.Title), nullString(input.Comment), verified, now, now)
	if err != nil {
		err = database.Classify(err)
		if errors.Is(err, database.ErrUniqueViolation) {
			return nil, fmt.Errorf("%w: you have already reviewed this product", database.ErrUniqueViolation)
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return s.get(ctx, id)
}

// List returns a page of a product's reviews, newest first
func (s *ReviewService) List(ctx context.Context, productID string, limit, offset int) ([]models.Review, error) {
	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	q := reviewQuery().
		Where(query.Eq("r.product_id", productID)).
		OrderBy("r.created_at", query.Desc).
		OrderBy("r.id", query.Asc).
		Limit(int64(limit))
	if offset > 0 {
		q = q.Offset(int64(offset))
	}

	stmt := q.Build()
	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}

func (s *ReviewService) authored(ctx context.Context, userID, id string) (*models.Review, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, fmt.Errorf("%w: only the author can change a review", ErrForbidden)
	}
	return r, nil
}

// Update changes the author's review
func (s *ReviewService) Update(ctx context.Context, userID, id string, input ReviewUpdate) (*models.Review, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	r, err := s.authored(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Rating != nil {
		r.Rating = *input.Rating
	}
	if input.Title != nil {
		r.Title = input.Title
	}
	if input.Comment != nil {
		r.Comment = input.Comment
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE product_reviews SET rating = ?, title = ?, comment = ?, updated_at = ? WHERE id = ?",
		r.Rating, nullString(r.Title), nullString(r.Comment), s.clock.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", database.Classify(err))
	}
	return s.get(ctx, id)
}

// Delete removes the author's review along with its votes
func (s *ReviewService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.authored(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM product_reviews WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// Stats aggregates the ratings of a product
func (s *ReviewService) Stats(ctx context.Context, productID string) (*models.ReviewStats, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT rating, COUNT(*) FROM product_reviews WHERE product_id = ? GROUP BY rating", productID)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}
	defer rows.Close()

	stats := &models.ReviewStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan review stats: %w", err)
		}
		stats.Distribution[rating] = count
		stats.TotalReviews += count
		sum += rating * count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalReviews > 0 {
		avg := float64(sum) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(avg*100) / 100
	}
	return stats, nil
}

// MarkHelpful records the user's vote on a review and returns the new
// number of helpful votes. Voting again replaces the previous vote.
func (s *ReviewService) MarkHelpful(ctx context.Context, reviewID, userID string, isHelpful bool) (int, error) {
	var count int
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM product_reviews WHERE id = ?)", reviewID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check review: %w", err)
		}
		if !exists {
			return notFound("review")
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO review_helpfulness (id, review_id, user_id, is_helpful, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (review_id, user_id) DO UPDATE SET is_helpful = excluded.is_helpful`,
			uuid.NewString(), reviewID, userID, isHelpful, s.clock.Now())
		if err != nil {
			return fmt.Errorf("record vote: %w", database.Classify(err))
		}

		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM review_helpfulness WHERE review_id = ? AND is_helpful = 1", reviewID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("count votes: %w", err)
		}

		_, err = tx.ExecContext(ctx, "UPDATE product_reviews SET helpful_count = ? WHERE id = ?", count, reviewID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
