package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/clock"
	"go-storefront/controllers"
	"go-storefront/models"
	"go-storefront/utils"
)

type noUsers struct{}

func (noUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, UserType: models.UserTypeCustomer}, nil
}

func newRouter() *mux.Router {
	router := mux.NewRouter()
	tokens := utils.NewTokenIssuer([]byte("secret"), time.Hour, clock.NewRealClock())
	RegisterRoutes(router, Controllers{
		Users:    &controllers.UserController{},
		Products: &controllers.ProductController{},
		Reviews:  &controllers.ReviewController{},
		Cart:     &controllers.CartController{},
		Orders:   &controllers.OrderController{},
		Business: &controllers.BusinessController{},
		Health:   &controllers.HealthController{},
	}, tokens, noUsers{})
	return router
}

func TestRegisterRoutes_Table(t *testing.T) {
	var got []string
	err := newRouter().Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		got = append(got, strings.Join(methods, ",")+" "+tpl)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(got)

	want := []string{
		"DELETE /api/cart",
		"DELETE /api/cart/{id}",
		"DELETE /api/products/{id}",
		"DELETE /api/reviews/{id}",
		"GET /api/auth/me",
		"GET /api/business/analytics",
		"GET /api/business/orders",
		"GET /api/business/products",
		"GET /api/business/profile",
		"GET /api/cart",
		"GET /api/categories",
		"GET /api/orders",
		"GET /api/orders/{id}",
		"GET /api/orders/{id}/events",
		"GET /api/products",
		"GET /api/products/{id}",
		"GET /api/products/{id}/reviews",
		"GET /api/products/{id}/reviews/stats",
		"GET /healthz",
		"POST /api/auth/login",
		"POST /api/auth/register",
		"POST /api/cart",
		"POST /api/orders",
		"POST /api/products",
		"POST /api/products/{id}/reviews",
		"POST /api/reviews/{id}/helpful",
		"PUT /api/business/profile",
		"PUT /api/cart/{id}",
		"PUT /api/orders/{id}/payment-status",
		"PUT /api/orders/{id}/status",
		"PUT /api/products/{id}",
		"PUT /api/reviews/{id}",
	}
	assert.Equal(t, want, got)
}

func TestRegisterRoutes_ProtectedWithoutToken(t *testing.T) {
	router := newRouter()

	for _, target := range []string{
		"GET /api/auth/me",
		"GET /api/cart",
		"POST /api/orders",
		"PUT /api/reviews/abc",
		"GET /api/business/profile",
		"POST /api/products",
		"DELETE /api/products/abc",
	} {
		method, path, _ := strings.Cut(target, " ")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestRegisterRoutes_BusinessRequiresOwner(t *testing.T) {
	router := newRouter()
	tokens := utils.NewTokenIssuer([]byte("secret"), time.Hour, clock.NewRealClock())
	token, err := tokens.GenerateJWT("customer-1", "c@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/business/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
