package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-storefront/clock"
	"go-storefront/database"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/utils"
)

// CheckoutInput is the body of an order placement request
type CheckoutInput struct {
	ShippingAddress models.Address  `json:"shippingAddress"`
	BillingAddress  *models.Address `json:"billingAddress" validate:"omitempty"`
	PaymentMethod   string          `json:"paymentMethod" validate:"omitempty,oneof=card crypto cash_on_delivery"`
}

// OrderNotifier tells customers about their orders
type OrderNotifier interface {
	SendOrderConfirmationEmail(toEmail, name string, order models.Order) error
	SendOrderStatusEmail(toEmail, name string, order models.Order) error
}

// OrderService turns carts into orders and moves orders through fulfilment
type OrderService struct {
	db       *sql.DB
	clock    clock.Clock
	notifier OrderNotifier
	archive  utils.OrderArchive
	jobs     *utils.Jobs
}

// NewOrderService creates an OrderService. Notifications and archive writes
// run on jobs after the database commit.
func NewOrderService(db *sql.DB, clk clock.Clock, notifier OrderNotifier, archive utils.OrderArchive, jobs *utils.Jobs) *OrderService {
	return &OrderService{db: db, clock: clk, notifier: notifier, archive: archive, jobs: jobs}
}

// Wait blocks until the background jobs, notifications and archive writes
// included, have finished
func (s *OrderService) Wait() {
	s.jobs.Wait()
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

type checkoutLine struct {
	productID string
	name      string
	quantity  int
	price     pricing.Money
	stock     int
	active    bool
}

func loadCheckoutLines(ctx context.Context, tx *sql.Tx, userID string) ([]checkoutLine, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT sc.product_id, p.name, sc.quantity, p.price, p.stock_quantity, p.is_active
		FROM shopping_cart sc
		JOIN products p ON p.id = sc.product_id
		WHERE sc.user_id = ?
		ORDER BY sc.created_at, sc.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	var lines []checkoutLine
	for rows.Next() {
		var l checkoutLine
		var price float64
		if err := rows.Scan(&l.productID, &l.name, &l.quantity, &price, &l.stock, &l.active); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		l.price = pricing.FromFloat(price)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func encodeAddress(a *models.Address) (sql.NullString, error) {
	if a == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// Checkout places an order for everything in the user's cart. Prices are
// snapshotted into the order items, stock is decremented and the cart is
// cleared, all in one transaction.
func (s *OrderService) Checkout(ctx context.Context, userID string, input CheckoutInput) (*models.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = models.PaymentMethodCard
	}
	shipping, err := encodeAddress(&input.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billing, err := encodeAddress(input.BillingAddress)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	orderID := uuid.NewString()

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		lines, err := loadCheckoutLines(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		priced := make([]pricing.Line, 0, len(lines))
		for _, l := range lines {
			if !l.active {
				return invalidf("%s is no longer available", l.name)
			}
			if l.stock < l.quantity {
				return fmt.Errorf("%w: only %d of %s left", ErrInsufficientStock, l.stock, l.name)
			}
			priced = append(priced, pricing.Line{UnitPrice: l.price, Quantity: l.quantity})
		}
		totals := pricing.ComputeTotals(priced)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (
				id, user_id, order_number, status, subtotal, shipping_amount, tax_amount, total_amount,
				shipping_address, billing_address, payment_status, payment_method, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			orderID, userID, newOrderNumber(now), models.OrderPending,
			totals.Subtotal.Float64(), totals.Shipping.Float64(), totals.Tax.Float64(), totals.Total.Float64(),
			shipping, billing, models.PaymentPending, input.PaymentMethod, now, now)
		if err != nil {
			return fmt.Errorf("create order: %w", database.Classify(err))
		}

		for i, l := range lines {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), orderID, l.productID, l.quantity,
				l.price.Float64(), priced[i].Total().Float64(), now)
			if err != nil {
				return fmt.Errorf("create order item: %w", database.Classify(err))
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ?
				WHERE id = ? AND stock_quantity >= ?`,
				l.quantity, now, l.productID, l.quantity)
			if err != nil {
				return fmt.Errorf("reserve stock: %w", database.Classify(err))
			}
			if err := mustAffect(res, fmt.Errorf("%w: %s", ErrInsufficientStock, l.name)); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM shopping_cart WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	placed := *order
	s.jobs.Go("order confirmation email", func(ctx context.Context) error {
		email, name, err := s.customerContact(ctx, placed.UserID)
		if err != nil {
			return err
		}
		return s.notifier.SendOrderConfirmationEmail(email, name, placed)
	})
	s.record(models.EventOrderPlaced, placed)
	return order, nil
}

func (s *OrderService) record(eventType string, order models.Order) {
	event := models.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount.String(),
		OccurredAt:    s.clock.Now(),
	}
	s.jobs.Go("archive "+eventType, func(ctx context.Context) error {
		return s.archive.Record(ctx, event)
	})
}

func (s *OrderService) customerContact(ctx context.Context, userID string) (string, string, error) {
	var email, name string
	err := s.db.QueryRowContext(ctx, "SELECT email, full_name FROM users WHERE id = ?", userID).Scan(&email, &name)
	if err != nil {
		return "", "", fmt.Errorf("load customer %s: %w", userID, err)
	}
	return email, name, nil
}

const orderColumns = `id, user_id, order_number, status, subtotal, shipping_amount, tax_amount, total_amount,
	shipping_address, billing_address, payment_status, payment_method, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var subtotal, shippingAmt, tax, total float64
	var shipping string
	var billing, method sql.NullString
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &subtotal, &shippingAmt, &tax, &total,
		&shipping, &billing, &o.PaymentStatus, &method, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Subtotal = pricing.FromFloat(subtotal)
	o.ShippingAmount = pricing.FromFloat(shippingAmt)
	o.TaxAmount = pricing.FromFloat(tax)
	o.TotalAmount = pricing.FromFloat(total)
	o.PaymentMethod = stringPtr(method)

	if err := json.Unmarshal([]byte(shipping), &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if billing.Valid {
		var a models.Address
		if err := json.Unmarshal([]byte(billing.String), &a); err != nil {
			return nil, fmt.Errorf("decode billing address: %w", err)
		}
		o.BillingAddress = &a
	}
	return &o, nil
}

func (s *OrderService) loadItems(ctx context.Context, q querier, orderID string) ([]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.unit_price, oi.total_price, oi.created_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.rowid`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		var unit, total float64
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &unit, &total, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		it.UnitPrice = pricing.FromFloat(unit)
		it.TotalPrice = pricing.FromFloat(total)
		items = append(items, it)
	}
	return items, rows.Err()
}

// getOrder loads any order with its items.
func (s *OrderService) getOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", orderID))
	if isNoRows(err) {
		return nil, notFound("order")
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.Items, err = s.loadItems(ctx, s.db, orderID); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns one of the user's orders. Orders of other users are not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, notFound("order")
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = ? ORDER BY created_at DESC, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].Items, err = s.loadItems(ctx, s.db, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// sellsInOrder reports whether userID owns the business behind any item of the order.
func sellsInOrder(ctx context.Context, q querier, userID, orderID string) (bool, error) {
	var sells bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			JOIN business_profiles b ON b.id = p.business_id
			WHERE oi.order_id = ? AND b.user_id = ?
		)`, orderID, userID).Scan(&sells)
	if err != nil {
		return false, fmt.Errorf("check seller: %w", err)
	}
	return sells, nil
}

// UpdateStatus moves an order along its lifecycle. Sellers of an item in the
// order may make any allowed move; the customer may only cancel. Cancelling
// returns the reserved stock.
func (s *OrderService) UpdateStatus(ctx context.Context, actorUserID, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalidf("unknown order status %q", status)
	}

	now := s.clock.Now()
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var owner string
		var current models.OrderStatus
		err := tx.QueryRowContext(ctx, "SELECT user_id, status FROM orders WHERE id = ?", orderID).Scan(&owner, &current)
		if isNoRows(err) {
			return notFound("order")
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		sells, err := sellsInOrder(ctx, tx, actorUserID, orderID)
		if err != nil {
			return err
		}
		if !sells && !(owner == actorUserID && status == models.OrderCancelled) {
			if owner != actorUserID {
				return notFound("order")
			}
			return fmt.Errorf("%w: customers can only cancel their orders", ErrForbidden)
		}

		if !current.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, status)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
			status, now, orderID, current)
		if err != nil {
			return fmt.Errorf("update order status: %w", database.Classify(err))
		}
		if err := mustAffect(res, fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)); err != nil {
			return err
		}

		if status == models.OrderCancelled {
			return restoreStock(ctx, tx, orderID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	changed := *order
	s.jobs.Go("order status email", func(ctx context.Context) error {
		email, name, err := s.customerContact(ctx, changed.UserID)
		if err != nil {
			return err
		}
		return s.notifier.SendOrderStatusEmail(email, name, changed)
	})
	s.record(models.EventOrderStatusChanged, changed)
	return order, nil
}

func restoreStock(ctx context.Context, tx *sql.Tx, orderID string, now time.Time) error {
	rows, err := tx.QueryContext(ctx, "SELECT product_id, quantity FROM order_items WHERE order_id = ?", orderID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}

	type reservation struct {
		productID string
		quantity  int
	}
	var reserved []reservation
	for rows.Next() {
		var r reservation
		if err := rows.Scan(&r.productID, &r.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scan order item: %w", err)
		}
		reserved = append(reserved, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range reserved {
		_, err := tx.ExecContext(ctx,
			"UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = ? WHERE id = ?",
			r.quantity, now, r.productID)
		if err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}
	return nil
}

// UpdatePaymentStatus records a payment outcome. Only sellers of an item in
// the order may change it; the order status is left alone.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, actorUserID, orderID string, status models.PaymentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalidf("unknown payment status %q", status)
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx, "SELECT user_id FROM orders WHERE id = ?", orderID).Scan(&owner)
		if isNoRows(err) {
			return notFound("order")
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		sells, err := sellsInOrder(ctx, tx, actorUserID, orderID)
		if err != nil {
			return err
		}
		if !sells {
			if owner != actorUserID {
				return notFound("order")
			}
			return fmt.Errorf("%w: only sellers can update payment status", ErrForbidden)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?",
			status, s.clock.Now(), orderID)
		if err != nil {
			return fmt.Errorf("update payment status: %w", database.Classify(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.record(models.EventPaymentChanged, *order)
	return order, nil
}

// ListBusinessOrders returns the order lines of products sold by a business, newest first
func (s *OrderService) ListBusinessOrders(ctx context.Context, businessID string) ([]models.BusinessOrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.order_number, o.status, o.payment_status, u.full_name,
			oi.product_id, p.name, oi.quantity, oi.unit_price, oi.total_price, o.created_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		JOIN users u ON u.id = o.user_id
		WHERE p.business_id = ?
		ORDER BY o.created_at DESC, oi.rowid`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list business orders: %w", err)
	}
	defer rows.Close()

	lines := []models.BusinessOrderItem{}
	for rows.Next() {
		var l models.BusinessOrderItem
		var unit, total float64
		err := rows.Scan(&l.OrderID, &l.OrderNumber, &l.Status, &l.PaymentStatus, &l.CustomerName,
			&l.ProductID, &l.ProductName, &l.Quantity, &unit, &total, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan business order: %w", err)
		}
		l.UnitPrice = pricing.FromFloat(unit)
		l.TotalPrice = pricing.FromFloat(total)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// History returns the archived lifecycle events of one of the user's orders
func (s *OrderService) History(ctx context.Context, userID, orderID string) ([]models.OrderEvent, error) {
	if _, err := s.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.archive.Events(ctx, orderID)
}
