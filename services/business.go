package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-storefront/clock"
	"go-storefront/database"
	"go-storefront/database/query"
	"go-storefront/models"
	"go-storefront/pricing"
)

// DefaultBusinessName is given to profiles created implicitly with a first product
const DefaultBusinessName = "My Business"

// BusinessProfileInput is the body of a profile update
type BusinessProfileInput struct {
	BusinessName        string  `json:"businessName" validate:"required,max=200"`
	BusinessDescription *string `json:"businessDescription" validate:"omitempty,max=2000"`
	BusinessAddress     *string `json:"businessAddress"`
	BusinessPhone       *string `json:"businessPhone" validate:"omitempty,max=40"`
	BusinessEmail       *string `json:"businessEmail" validate:"omitempty,email"`
	TaxID               *string `json:"taxId" validate:"omitempty,max=50"`
}

// BusinessService manages seller profiles and their reporting
type BusinessService struct {
	db    *sql.DB
	clock clock.Clock
}

// NewBusinessService creates a BusinessService
func NewBusinessService(db *sql.DB, clk clock.Clock) *BusinessService {
	return &BusinessService{db: db, clock: clk}
}

const businessColumns = `id, user_id, business_name, business_description, business_address,
	business_phone, business_email, tax_id, is_verified, created_at, updated_at`

func scanBusiness(row rowScanner) (*models.BusinessProfile, error) {
	var b models.BusinessProfile
	var desc, addr, phone, email, taxID sql.NullString
	err := row.Scan(&b.ID, &b.UserID, &b.BusinessName, &desc, &addr, &phone, &email, &taxID,
		&b.IsVerified, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.BusinessDescription = stringPtr(desc)
	b.BusinessAddress = stringPtr(addr)
	b.BusinessPhone = stringPtr(phone)
	b.BusinessEmail = stringPtr(email)
	b.TaxID = stringPtr(taxID)
	return &b, nil
}

// ensureBusinessProfile returns the id of the user's profile, creating an
// unverified default profile when there is none.
func ensureBusinessProfile(ctx context.Context, q querier, userID string, now time.Time) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, "SELECT id FROM business_profiles WHERE user_id = ?", userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !isNoRows(err) {
		return "", fmt.Errorf("load business: %w", err)
	}

	id = uuid.NewString()
	_, err = q.ExecContext(ctx, `
		INSERT INTO business_profiles (id, user_id, business_name, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)`,
		id, userID, DefaultBusinessName, now, now)
	if err != nil {
		return "", fmt.Errorf("create business: %w", database.Classify(err))
	}
	return id, nil
}

// GetProfile returns the profile owned by userID
func (s *BusinessService) GetProfile(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+businessColumns+" FROM business_profiles WHERE user_id = ?", userID)
	b, err := scanBusiness(row)
	if isNoRows(err) {
		return nil, notFound("business profile")
	}
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}
	return b, nil
}

// UpsertProfile creates the caller's profile or replaces its editable fields.
// Verification is never changed here.
func (s *BusinessService) UpsertProfile(ctx context.Context, userID string, input BusinessProfileInput) (*models.BusinessProfile, error) {
	input.BusinessName = strings.TrimSpace(input.BusinessName)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireBusinessOwner(ctx, tx, userID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO business_profiles (
				id, user_id, business_name, business_description, business_address,
				business_phone, business_email, tax_id, is_verified, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				business_name = excluded.business_name,
				business_description = excluded.business_description,
				business_address = excluded.business_address,
				business_phone = excluded.business_phone,
				business_email = excluded.business_email,
				tax_id = excluded.tax_id,
				updated_at = excluded.updated_at`,
			uuid.NewString(), userID, input.BusinessName,
			nullString(input.BusinessDescription), nullString(input.BusinessAddress),
			nullString(input.BusinessPhone), nullString(input.BusinessEmail), nullString(input.TaxID),
			now, now)
		if err != nil {
			return fmt.Errorf("save business: %w", database.Classify(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// ListProducts returns every product of a business, including inactive and
// sold-out ones, newest first
func (s *BusinessService) ListProducts(ctx context.Context, businessID string) ([]models.Product, error) {
	stmt := productQuery().
		Where(query.Eq("p.business_id", businessID)).
		OrderBy("p.created_at", query.Desc).
		OrderBy("p.id", query.Asc).
		Build()

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("list business products: %w", err)
	}
	return collectProducts(rows)
}

// Analytics summarizes a business. Cancelled orders do not count as sales.
func (s *BusinessService) Analytics(ctx context.Context, businessID string) (*models.BusinessAnalytics, error) {
	a := &models.BusinessAnalytics{Revenue: pricing.Zero()}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE business_id = ? AND is_active = 1", businessID,
	).Scan(&a.TotalProducts)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT oi.total_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN orders o ON o.id = oi.order_id
		WHERE p.business_id = ? AND o.status != ?`,
		businessID, models.OrderCancelled)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var total float64
		if err := rows.Scan(&total); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		a.TotalOrderItems++
		a.Revenue = a.Revenue.Add(pricing.FromFloat(total))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(r.id), AVG(r.rating)
		FROM product_reviews r
		JOIN products p ON p.id = r.product_id
		WHERE p.business_id = ?`,
		businessID).Scan(&a.TotalReviews, &avg)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	if avg.Valid {
		a.AverageRating = math.Round(avg.Float64*100) / 100
	}
	return a, nil
}
