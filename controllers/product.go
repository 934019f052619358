package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/services"
	"go-storefront/utils"
)

// ProductController handles product-related requests
type ProductController struct {
	Products *services.ProductService
}

// NewProductController creates a new ProductController
func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{Products: products}
}

// GetProducts retrieves the storefront listing
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	filter := services.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Limit:    limit,
		Offset:   offset,
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	products, err := pc.Products.List(ctx, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := pc.Products.Count(ctx, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"products": products, "total": total})
}

// GetProductByID retrieves a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	product, err := pc.Products.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"product": product})
}

// CreateProduct adds a product to the caller's business
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input services.ProductInput
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	product, err := pc.Products.Create(ctx, userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Product created successfully",
		"productId": product.ID,
	})
}

// UpdateProduct changes a product of the caller's business
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input services.ProductUpdate
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	product, err := pc.Products.Update(ctx, userID, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a product of the caller's business
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := pc.Products.Delete(ctx, userID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// GetCategories lists the active categories
func (pc *ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	categories, err := pc.Products.ListCategories(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}
