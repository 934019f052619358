package controllers

import (
	"context"
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"
)

// BusinessController serves the seller dashboard
type BusinessController struct {
	Businesses *services.BusinessService
	Orders     *services.OrderService
}

// NewBusinessController creates a new BusinessController
func NewBusinessController(businesses *services.BusinessService, orders *services.OrderService) *BusinessController {
	return &BusinessController{Businesses: businesses, Orders: orders}
}

// businessID resolves the caller's business, answering the request itself on failure.
func (bc *BusinessController) businessID(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return "", false
	}
	profile, err := bc.Businesses.GetProfile(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return "", false
	}
	return profile.ID, true
}

// GetProfile returns the caller's business profile
func (bc *BusinessController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	profile, err := bc.Businesses.GetProfile(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

// UpdateProfile creates or updates the caller's business profile
func (bc *BusinessController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input services.BusinessProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	profile, err := bc.Businesses.UpsertProfile(ctx, userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Business profile saved", "profile": profile})
}

// GetProducts lists every product of the caller's business
func (bc *BusinessController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	businessID, ok := bc.businessID(ctx, w, r)
	if !ok {
		return
	}
	products, err := bc.Businesses.ListProducts(ctx, businessID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"products": products})
}

// GetOrders lists the order lines of the caller's products
func (bc *BusinessController) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	businessID, ok := bc.businessID(ctx, w, r)
	if !ok {
		return
	}
	orders, err := bc.Orders.ListBusinessOrders(ctx, businessID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// GetAnalytics summarizes the caller's business
func (bc *BusinessController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	businessID, ok := bc.businessID(ctx, w, r)
	if !ok {
		return
	}
	analytics, err := bc.Businesses.Analytics(ctx, businessID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"analytics": analytics})
}
