package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-storefront/database"
	"go-storefront/middleware"
	"go-storefront/services"
	"go-storefront/utils"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: only the author", services.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("product %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad", services.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: email already registered", database.ErrUniqueViolation), http.StatusBadRequest},
		{services.ErrEmptyCart, http.StatusBadRequest},
		{services.ErrInvalidTransition, http.StatusBadRequest},
		{errors.New("disk I/O error"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/products/x", nil)
	writeError(rec, req, fmt.Errorf("product %w", services.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"product not found"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Quantity int `json:"quantity"`
	}

	rec := httptest.NewRecorder()
	ok := decodeJSON(rec, httptest.NewRequest("POST", "/", strings.NewReader(`{"quantity":3}`)), &v)
	assert.True(t, ok)
	assert.Equal(t, 3, v.Quantity)

	rec = httptest.NewRecorder()
	ok = decodeJSON(rec, httptest.NewRequest("POST", "/", strings.NewReader(`{`)), &v)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid input"}`, rec.Body.String())
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=20&offset=-1&page=x", nil)

	n, err := queryInt(req, "limit")
	assert.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = queryInt(req, "missing")
	assert.NoError(t, err)
	assert.Zero(t, n)

	_, err = queryInt(req, "offset")
	assert.Error(t, err)
	_, err = queryInt(req, "page")
	assert.Error(t, err)
}

func TestCurrentUserID(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := currentUserID(rec, httptest.NewRequest("GET", "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), &utils.Claims{UserID: "u-1"}))
	id, ok := currentUserID(httptest.NewRecorder(), req)
	assert.True(t, ok)
	assert.Equal(t, "u-1", id)
}
