package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"go-storefront/clock"
	"go-storefront/database"
	"go-storefront/models"
	"go-storefront/pricing"
)

// MaxCartQuantity bounds a single cart line. The shopping_cart table enforces
// the same limit.
const MaxCartQuantity = 10000

// CartService keeps one line per (user, product) and prices the cart
type CartService struct {
	db    *sql.DB
	clock clock.Clock
}

// NewCartService creates a CartService
func NewCartService(db *sql.DB, clk clock.Clock) *CartService {
	return &CartService{db: db, clock: clk}
}

const cartLineQuery = `
	SELECT sc.id, sc.user_id, sc.product_id, sc.quantity, sc.created_at, sc.updated_at,
		p.name, p.price, p.image_url, p.stock_quantity, b.business_name
	FROM shopping_cart sc
	JOIN products p ON p.id = sc.product_id
	JOIN business_profiles b ON b.id = p.business_id`

func scanCartItem(row rowScanner) (*models.CartItem, error) {
	var item models.CartItem
	var price float64
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
		&item.Name, &price, &item.ImageURL, &item.StockQuantity, &item.BusinessName)
	if err != nil {
		return nil, err
	}
	item.Price = pricing.FromFloat(price)
	item.LineTotal = item.Price.MulInt(int64(item.Quantity))
	return &item, nil
}

func (s *CartService) getLine(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	row := s.db.QueryRowContext(ctx, cartLineQuery+" WHERE sc.user_id = ? AND sc.product_id = ?", userID, productID)
	item, err := scanCartItem(row)
	if isNoRows(err) {
		return nil, notFound("cart item")
	}
	if err != nil {
		return nil, fmt.Errorf("load cart item: %w", err)
	}
	return item, nil
}

// AddToCart adds qty units of a product. Adding a product that is already in
// the cart increases the existing line instead of creating a second one.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, invalidf("quantity must be at least 1")
	}
	if qty > MaxCartQuantity {
		return nil, invalidf("quantity cannot exceed %d", MaxCartQuantity)
	}

	var active bool
	err := s.db.QueryRowContext(ctx, "SELECT is_active FROM products WHERE id = ?", productID).Scan(&active)
	if isNoRows(err) || (err == nil && !active) {
		return nil, notFound("product")
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	now := s.clock.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shopping_cart (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			quantity = quantity + excluded.quantity,
			updated_at = excluded.updated_at`,
		uuid.NewString(), userID, productID, qty, now, now)
	if err = database.Classify(err); errors.Is(err, database.ErrCheckViolation) {
		return nil, fmt.Errorf("%w: a cart line cannot hold more than %d units", database.ErrCheckViolation, MaxCartQuantity)
	}
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return s.getLine(ctx, userID, productID)
}

// UpdateCartLine sets the quantity of one of the user's lines. A quantity of
// zero or less removes the line and returns nil.
func (s *CartService) UpdateCartLine(ctx context.Context, lineID, userID string, qty int) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, s.RemoveCartLine(ctx, lineID, userID)
	}
	if qty > MaxCartQuantity {
		return nil, invalidf("quantity cannot exceed %d", MaxCartQuantity)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE shopping_cart SET quantity = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		qty, s.clock.Now(), lineID, userID)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", database.Classify(err))
	}
	if err := mustAffect(res, notFound("cart item")); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, cartLineQuery+" WHERE sc.id = ? AND sc.user_id = ?", lineID, userID)
	item, err := scanCartItem(row)
	if err != nil {
		return nil, fmt.Errorf("load cart item: %w", err)
	}
	return item, nil
}

// RemoveCartLine deletes one of the user's lines
func (s *CartService) RemoveCartLine(ctx context.Context, lineID, userID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM shopping_cart WHERE id = ? AND user_id = ?", lineID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return mustAffect(res, notFound("cart item"))
}

// ClearCart empties the user's cart and reports how many lines were removed
func (s *CartService) ClearCart(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM shopping_cart WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return res.RowsAffected()
}

// ListCart returns the user's lines for active products, newest first
func (s *CartService) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	rows, err := s.db.QueryContext(ctx,
		cartLineQuery+" WHERE sc.user_id = ? AND p.is_active = 1 ORDER BY sc.created_at DESC, sc.id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Summary returns the cart with its item count and totals
func (s *CartService) Summary(ctx context.Context, userID string) (*models.Cart, error) {
	items, err := s.ListCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(items))
	count := 0
	for _, item := range items {
		lines = append(lines, pricing.Line{UnitPrice: item.Price, Quantity: item.Quantity})
		count += item.Quantity
	}

	return &models.Cart{
		Items:     items,
		ItemCount: count,
		Totals:    pricing.ComputeTotals(lines),
	}, nil
}
