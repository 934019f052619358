package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"go-storefront/clock"
	"go-storefront/database"
	"go-storefront/database/query"
	"go-storefront/models"
	"go-storefront/pricing"
)

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Sort orders accepted by ProductService.List.
const (
	SortNewest    = ""
	SortName      = "name"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	Category   string
	Search     string
	BusinessID string
	Sort       string
	Limit      int
	Offset     int
}

// FeatureList accepts either a JSON array of strings or a comma-separated string
type FeatureList []string

func (f *FeatureList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = cleanFeatures(list)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("features must be a list or a comma-separated string")
	}
	*f = cleanFeatures(strings.Split(s, ","))
	return nil
}

func cleanFeatures(in []string) FeatureList {
	out := FeatureList{}
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ProductInput is the body of a product creation request
type ProductInput struct {
	Name             string         `json:"name" validate:"required,max=200"`
	Description      string         `json:"description" validate:"required"`
	Price            pricing.Money  `json:"price"`
	OriginalPrice    *pricing.Money `json:"originalPrice"`
	CategoryID       string         `json:"categoryId" validate:"required"`
	ImageURL         string         `json:"imageUrl" validate:"required"`
	AdditionalImages []string       `json:"additionalImages"`
	StockQuantity    int            `json:"stockQuantity" validate:"gte=0"`
	Features         FeatureList    `json:"features"`
	IsActive         *bool          `json:"isActive"`
}

// ProductUpdate changes only the fields that are set
type ProductUpdate struct {
	Name             *string        `json:"name" validate:"omitempty,min=1,max=200"`
	Description      *string        `json:"description" validate:"omitempty,min=1"`
	Price            *pricing.Money `json:"price"`
	OriginalPrice    *pricing.Money `json:"originalPrice"`
	CategoryID       *string        `json:"categoryId" validate:"omitempty,min=1"`
	ImageURL         *string        `json:"imageUrl" validate:"omitempty,min=1"`
	AdditionalImages []string       `json:"additionalImages"`
	StockQuantity    *int           `json:"stockQuantity" validate:"omitempty,gte=0"`
	Features         FeatureList    `json:"features"`
	IsActive         *bool          `json:"isActive"`
}

// ProductService serves the catalog
type ProductService struct {
	db    *sql.DB
	clock clock.Clock
}

// NewProductService creates a ProductService
func NewProductService(db *sql.DB, clk clock.Clock) *ProductService {
	return &ProductService{db: db, clock: clk}
}

var productColumns = []string{
	"p.id", "p.business_id", "p.category_id", "p.name", "p.description", "p.price",
	"p.original_price", "p.image_url", "p.additional_images", "p.features",
	"p.stock_quantity", "p.is_active", "p.created_at", "p.updated_at",
	"c.name", "b.business_name", "b.is_verified",
}

func productQuery() *query.Builder {
	return query.From("products p").
		Select(productColumns...).
		Join("JOIN categories c ON c.id = p.category_id").
		Join("JOIN business_profiles b ON b.id = p.business_id")
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var price float64
	var original sql.NullFloat64
	var images, features sql.NullString
	err := row.Scan(&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.Description, &price,
		&original, &p.ImageURL, &images, &features,
		&p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.BusinessName, &p.IsVerified)
	if err != nil {
		return nil, err
	}
	p.Price = pricing.FromFloat(price)
	if original.Valid {
		op := pricing.FromFloat(original.Float64)
		p.OriginalPrice = &op
	}
	p.AdditionalImages = decodeStrings(images)
	p.Features = decodeStrings(features)
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()
	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// listingQuery builds the storefront listing: active, in-stock products only
func listingQuery(filter ProductFilter) (*query.Builder, error) {
	q := productQuery().
		Where(query.Eq("p.is_active", true)).
		Where(query.Gt("p.stock_quantity", 0))

	if filter.Category != "" {
		q = q.Where(query.Eq("c.name", filter.Category))
	}
	if filter.BusinessID != "" {
		q = q.Where(query.Eq("p.business_id", filter.BusinessID))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where(query.ContainsFold(search, database.Fold, "p.name", "p.description"))
	}

	switch filter.Sort {
	case SortNewest, SortRating:
		// No rating aggregate is kept on products, rating falls back to newest first.
		q = q.OrderBy("p.created_at", query.Desc)
	case SortName:
		q = q.OrderBy("casefold(p.name)", query.Asc)
	case SortPriceAsc:
		q = q.OrderBy("p.price", query.Asc)
	case SortPriceDesc:
		q = q.OrderBy("p.price", query.Desc)
	default:
		return nil, invalidf("unknown sort %q", filter.Sort)
	}
	q = q.OrderBy("p.id", query.Asc)

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	q = q.Limit(int64(limit))
	if filter.Offset > 0 {
		q = q.Offset(int64(filter.Offset))
	}
	return q, nil
}

// List returns the storefront listing
func (s *ProductService) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q, err := listingQuery(filter)
	if err != nil {
		return nil, err
	}

	stmt := q.Build()
	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

// Count returns how many products match filter, ignoring its limit and offset
func (s *ProductService) Count(ctx context.Context, filter ProductFilter) (int, error) {
	q, err := listingQuery(filter)
	if err != nil {
		return 0, err
	}

	stmt := q.Count().Build()
	var total int
	if err := s.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// Get returns one product, active or not
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return getProduct(ctx, s.db, id)
}

func getProduct(ctx context.Context, q querier, id string) (*models.Product, error) {
	stmt := productQuery().Where(query.Eq("p.id", id)).Build()
	p, err := scanProduct(q.QueryRowContext(ctx, stmt.SQL, stmt.Args...))
	if isNoRows(err) {
		return nil, notFound("product")
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

func validatePrices(price pricing.Money, original *pricing.Money) error {
	if !price.IsPositive() {
		return invalidf("price must be greater than 0")
	}
	if original != nil && original.Cmp(price) <= 0 {
		return invalidf("originalPrice must be greater than price")
	}
	return nil
}

// presentPrice treats a zero original price as absent.
func presentPrice(m *pricing.Money) *pricing.Money {
	if m == nil || m.IsZero() {
		return nil
	}
	return m
}

func requireBusinessOwner(ctx context.Context, q querier, userID string) error {
	var userType models.UserType
	err := q.QueryRowContext(ctx, "SELECT user_type FROM users WHERE id = ?", userID).Scan(&userType)
	if isNoRows(err) {
		return notFound("user")
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if userType != models.UserTypeBusinessOwner {
		return fmt.Errorf("%w: only business owners can manage products", ErrForbidden)
	}
	return nil
}

// Create adds a product to the owner's business, creating a default business
// profile first if the owner has none
func (s *ProductService) Create(ctx context.Context, ownerUserID string, input ProductInput) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	input.OriginalPrice = presentPrice(input.OriginalPrice)
	if err := validatePrices(input.Price, input.OriginalPrice); err != nil {
		return nil, err
	}

	images, err := encodeStrings(input.AdditionalImages)
	if err != nil {
		return nil, err
	}
	features, err := encodeStrings(input.Features)
	if err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	var original sql.NullFloat64
	if input.OriginalPrice != nil {
		original = sql.NullFloat64{Float64: input.OriginalPrice.Float64(), Valid: true}
	}

	id := uuid.NewString()
	now := s.clock.Now()
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireBusinessOwner(ctx, tx, ownerUserID); err != nil {
			return err
		}
		businessID, err := ensureBusinessProfile(ctx, tx, ownerUserID, now)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (
				id, business_id, category_id, name, description, price, original_price,
				image_url, additional_images, features, stock_quantity, is_active, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, businessID, input.CategoryID, strings.TrimSpace(input.Name), input.Description,
			input.Price.Float64(), original, input.ImageURL, images, features,
			input.StockQuantity, active, now, now)
		if err != nil {
			err = database.Classify(err)
			if errors.Is(err, database.ErrForeignKeyViolation) {
				return invalidf("unknown category %q", input.CategoryID)
			}
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ownedProduct loads a product and checks that ownerUserID runs its business.
func ownedProduct(ctx context.Context, q querier, ownerUserID, id string) (*models.Product, error) {
	p, err := getProduct(ctx, q, id)
	if err != nil {
		return nil, err
	}

	var owner string
	if err := q.QueryRowContext(ctx, "SELECT user_id FROM business_profiles WHERE id = ?", p.BusinessID).Scan(&owner); err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}
	if owner != ownerUserID {
		return nil, fmt.Errorf("%w: product belongs to another business", ErrForbidden)
	}
	return p, nil
}

// Update changes a product of the caller's business
func (s *ProductService) Update(ctx context.Context, ownerUserID, id string, input ProductUpdate) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := ownedProduct(ctx, tx, ownerUserID, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			p.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			p.Description = *input.Description
		}
		if input.Price != nil {
			p.Price = *input.Price
		}
		if input.OriginalPrice != nil {
			p.OriginalPrice = presentPrice(input.OriginalPrice)
		}
		if input.CategoryID != nil {
			p.CategoryID = *input.CategoryID
		}
		if input.ImageURL != nil {
			p.ImageURL = *input.ImageURL
		}
		if input.AdditionalImages != nil {
			p.AdditionalImages = input.AdditionalImages
		}
		if input.StockQuantity != nil {
			p.StockQuantity = *input.StockQuantity
		}
		if input.Features != nil {
			p.Features = input.Features
		}
		if input.IsActive != nil {
			p.IsActive = *input.IsActive
		}

		if err := validatePrices(p.Price, p.OriginalPrice); err != nil {
			return err
		}

		images, err := encodeStrings(p.AdditionalImages)
		if err != nil {
			return err
		}
		features, err := encodeStrings(p.Features)
		if err != nil {
			return err
		}
		var original sql.NullFloat64
		if p.OriginalPrice != nil {
			original = sql.NullFloat64{Float64: p.OriginalPrice.Float64(), Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products SET
				category_id = ?, name = ?, description = ?, price = ?, original_price = ?,
				image_url = ?, additional_images = ?, features = ?, stock_quantity = ?,
				is_active = ?, updated_at = ?
			WHERE id = ?`,
			p.CategoryID, p.Name, p.Description, p.Price.Float64(), original,
			p.ImageURL, images, features, p.StockQuantity,
			p.IsActive, s.clock.Now(), id)
		if err != nil {
			err = database.Classify(err)
			if errors.Is(err, database.ErrForeignKeyViolation) {
				return invalidf("unknown category %q", p.CategoryID)
			}
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a product of the caller's business. Products that appear in
// orders are deactivated instead so order history keeps its references.
func (s *ProductService) Delete(ctx context.Context, ownerUserID, id string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := ownedProduct(ctx, tx, ownerUserID, id); err != nil {
			return err
		}

		var ordered bool
		if err := tx.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = ?)", id).Scan(&ordered); err != nil {
			return fmt.Errorf("check order history: %w", err)
		}

		if ordered {
			_, err := tx.ExecContext(ctx, "UPDATE products SET is_active = 0, updated_at = ? WHERE id = ?", s.clock.Now(), id)
			if err != nil {
				return fmt.Errorf("deactivate product: %w", err)
			}
			// Deactivated products must not linger in carts.
			if _, err := tx.ExecContext(ctx, "DELETE FROM shopping_cart WHERE product_id = ?", id); err != nil {
				return fmt.Errorf("remove product from carts: %w", err)
			}
			return nil
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete product: %w", database.Classify(err))
		}
		return nil
	})
}
