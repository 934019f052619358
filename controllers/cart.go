package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/services"
	"go-storefront/utils"
)

// CartController handles cart-related requests
type CartController struct {
	Carts *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateCartRequest struct {
	Quantity *int `json:"quantity"`
}

// GetCart returns the user's cart with its totals
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cart, err := cc.Carts.Summary(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// AddToCart adds a product to the user's cart. Quantity defaults to 1.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input addToCartRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.ProductID == "" {
		utils.WriteError(w, http.StatusBadRequest, "productId is required")
		return
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	item, err := cc.Carts.AddToCart(ctx, userID, input.ProductID, qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Item added to cart", "item": item})
}

// UpdateCartItem sets the quantity of a cart line; zero or less removes it
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input updateCartRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Quantity == nil {
		utils.WriteError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	item, err := cc.Carts.UpdateCartLine(ctx, mux.Vars(r)["id"], userID, *input.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Cart updated", "item": item})
}

// RemoveFromCart removes a line from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := cc.Carts.RemoveCartLine(ctx, mux.Vars(r)["id"], userID); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	removed, err := cc.Carts.ClearCart(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Cart cleared", "removed": removed})
}
