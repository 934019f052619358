package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/services"
	"go-storefront/utils"
)

// ReviewController handles product reviews
type ReviewController struct {
	Reviews *services.ReviewService
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{Reviews: reviews}
}

// GetReviews lists a product's reviews, newest first
func (rc *ReviewController) GetReviews(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reviews, err := rc.Reviews.List(ctx, mux.Vars(r)["id"], limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// GetReviewStats returns the rating summary of a product
func (rc *ReviewController) GetReviewStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	stats, err := rc.Reviews.Stats(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

// CreateReview adds the caller's review of a product
func (rc *ReviewController) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input services.ReviewInput
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	review, err := rc.Reviews.Create(ctx, userID, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Review added", "review": review})
}

// UpdateReview changes the caller's review
func (rc *ReviewController) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input services.ReviewUpdate
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	review, err := rc.Reviews.Update(ctx, userID, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Review updated", "review": review})
}

// DeleteReview removes the caller's review
func (rc *ReviewController) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := rc.Reviews.Delete(ctx, userID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Review deleted"})
}

type helpfulRequest struct {
	IsHelpful *bool `json:"isHelpful"`
}

// MarkHelpful records the caller's helpfulness vote. An empty body counts as helpful.
func (rc *ReviewController) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input helpfulRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &input) {
		return
	}
	helpful := input.IsHelpful == nil || *input.IsHelpful

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	count, err := rc.Reviews.MarkHelpful(ctx, mux.Vars(r)["id"], userID, helpful)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"helpful_count": count})
}
