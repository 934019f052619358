package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"go-storefront/database"
	"go-storefront/middleware"
	"go-storefront/services"
	"go-storefront/utils"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

// statusFor maps a service error to an HTTP status. Everything else,
// unexpected failures included, is a bad request carrying the error message.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusBadRequest && !isExpected(err) {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	utils.WriteError(w, status, err.Error())
}

// isExpected reports whether err is a client mistake rather than a failure worth logging.
func isExpected(err error) bool {
	var verr *utils.ValidationError
	return errors.Is(err, services.ErrInvalidInput) ||
		errors.As(err, &verr) ||
		database.IsConstraint(err) ||
		errors.Is(err, services.ErrEmptyCart) ||
		errors.Is(err, services.ErrInsufficientStock) ||
		errors.Is(err, services.ErrInvalidTransition)
}

// decodeJSON reads the request body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return false
	}
	return true
}

// currentUserID returns the authenticated user, answering 401 itself when
// the route was mounted without AuthMiddleware.
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Access token required")
		return "", false
	}
	return claims.UserID, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
