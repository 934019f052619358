package models

import (
	"time"

	"go-storefront/pricing"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderProgression = map[OrderStatus]int{
	OrderPending:    0,
	OrderConfirmed:  1,
	OrderProcessing: 2,
	OrderShipped:    3,
	OrderDelivered:  4,
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	_, ok := orderProgression[s]
	return ok || s == OrderCancelled
}

// CanTransitionTo reports whether an order may move from s to next.
// Orders only move forward; cancellation is possible until the order ships.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderCancelled {
		return s == OrderPending || s == OrderConfirmed || s == OrderProcessing
	}
	from, ok := orderProgression[s]
	if !ok {
		return false
	}
	to, ok := orderProgression[next]
	return ok && to > from
}

// Order represents a placed order
type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	OrderNumber     string        `json:"order_number"`
	Status          OrderStatus   `json:"status"`
	Subtotal        pricing.Money `json:"subtotal"`
	ShippingAmount  pricing.Money `json:"shipping_amount"`
	TaxAmount       pricing.Money `json:"tax_amount"`
	TotalAmount     pricing.Money `json:"total_amount"`
	ShippingAddress Address       `json:"shipping_address"`
	BillingAddress  *Address      `json:"billing_address"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentMethod   *string       `json:"payment_method"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Items           []OrderItem   `json:"items,omitempty"`
}

// OrderItem is a product line of an order with the price paid at checkout
type OrderItem struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"order_id"`
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name,omitempty"`
	Quantity    int           `json:"quantity"`
	UnitPrice   pricing.Money `json:"unit_price"`
	TotalPrice  pricing.Money `json:"total_price"`
	CreatedAt   time.Time     `json:"created_at"`
}

// BusinessOrderItem is an order line seen from the seller's side
type BusinessOrderItem struct {
	OrderID       string        `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CustomerName  string        `json:"customer_name"`
	ProductID     string        `json:"product_id"`
	ProductName   string        `json:"product_name"`
	Quantity      int           `json:"quantity"`
	UnitPrice     pricing.Money `json:"unit_price"`
	TotalPrice    pricing.Money `json:"total_price"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Order event types written to the archive
const (
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
	EventPaymentChanged     = "payment_status_changed"
)

// OrderEvent is an append-only record of an order lifecycle change
type OrderEvent struct {
	Type          string        `bson:"type" json:"type"`
	OrderID       string        `bson:"order_id" json:"order_id"`
	OrderNumber   string        `bson:"order_number" json:"order_number"`
	UserID        string        `bson:"user_id" json:"user_id"`
	Status        OrderStatus   `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	TotalAmount   string        `bson:"total_amount" json:"total_amount"`
	OccurredAt    time.Time     `bson:"occurred_at" json:"occurred_at"`
}
