package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders *services.OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type paymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// CreateOrder checks out the user's cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input services.CheckoutInput
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	// The confirmation email goes out in the background once the order is stored
	order, err := oc.Orders.Checkout(ctx, userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Order placed successfully", "order": order})
}

// GetOrders lists the user's orders
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := oc.Orders.ListOrders(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// GetOrder returns one of the user's orders
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := oc.Orders.GetOrder(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"order": order})
}

// GetOrderEvents returns the archived lifecycle of one of the user's orders
func (oc *OrderController) GetOrderEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	events, err := oc.Orders.History(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []models.OrderEvent{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// UpdateOrderStatus moves an order along its lifecycle
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input statusRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := oc.Orders.UpdateStatus(ctx, userID, mux.Vars(r)["id"], input.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Order status updated", "order": order})
}

// UpdateOrderPaymentStatus records a payment outcome
func (oc *OrderController) UpdateOrderPaymentStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input paymentStatusRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := oc.Orders.UpdatePaymentStatus(ctx, userID, mux.Vars(r)["id"], input.PaymentStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Payment status updated", "order": order})
}
