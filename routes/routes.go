// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/utils"
)

// Controllers groups the handlers mounted by RegisterRoutes
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Reviews  *controllers.ReviewController
	Cart     *controllers.CartController
	Orders   *controllers.OrderController
	Business *controllers.BusinessController
	Health   *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, tokens *utils.TokenIssuer, users middleware.UserLoader) {
	requireAuth := middleware.AuthMiddleware(tokens)
	requireOwner := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.BusinessOwnerMiddleware(users)(h))
	}

	router.HandleFunc("/healthz", c.Health.Check).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	api.HandleFunc("/auth/register", c.Users.Register).Methods("POST")
	api.HandleFunc("/auth/login", c.Users.Login).Methods("POST")
	api.Handle("/auth/me", requireAuth(http.HandlerFunc(c.Users.GetProfile))).Methods("GET")

	// Catalog routes
	api.HandleFunc("/categories", c.Products.GetCategories).Methods("GET")
	api.HandleFunc("/products", c.Products.GetProducts).Methods("GET")
	api.HandleFunc("/products/{id}", c.Products.GetProductByID).Methods("GET")
	api.Handle("/products", requireOwner(c.Products.CreateProduct)).Methods("POST")
	api.Handle("/products/{id}", requireOwner(c.Products.UpdateProduct)).Methods("PUT")
	api.Handle("/products/{id}", requireOwner(c.Products.DeleteProduct)).Methods("DELETE")

	// Review routes
	api.HandleFunc("/products/{id}/reviews", c.Reviews.GetReviews).Methods("GET")
	api.HandleFunc("/products/{id}/reviews/stats", c.Reviews.GetReviewStats).Methods("GET")
	api.Handle("/products/{id}/reviews", requireAuth(http.HandlerFunc(c.Reviews.CreateReview))).Methods("POST")

	reviews := api.PathPrefix("/reviews").Subrouter()
	reviews.Use(requireAuth)
	reviews.HandleFunc("/{id}", c.Reviews.UpdateReview).Methods("PUT")
	reviews.HandleFunc("/{id}", c.Reviews.DeleteReview).Methods("DELETE")
	reviews.HandleFunc("/{id}/helpful", c.Reviews.MarkHelpful).Methods("POST")

	// Cart routes
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(requireAuth)
	cart.HandleFunc("", c.Cart.GetCart).Methods("GET")
	cart.HandleFunc("", c.Cart.AddToCart).Methods("POST")
	cart.HandleFunc("", c.Cart.ClearCart).Methods("DELETE")
	cart.HandleFunc("/{id}", c.Cart.UpdateCartItem).Methods("PUT")
	cart.HandleFunc("/{id}", c.Cart.RemoveFromCart).Methods("DELETE")

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(requireAuth)
	orders.HandleFunc("", c.Orders.CreateOrder).Methods("POST")
	orders.HandleFunc("", c.Orders.GetOrders).Methods("GET")
	orders.HandleFunc("/{id}", c.Orders.GetOrder).Methods("GET")
	orders.HandleFunc("/{id}/events", c.Orders.GetOrderEvents).Methods("GET")
	orders.HandleFunc("/{id}/status", c.Orders.UpdateOrderStatus).Methods("PUT")
	orders.HandleFunc("/{id}/payment-status", c.Orders.UpdateOrderPaymentStatus).Methods("PUT")

	// Business routes
	business := api.PathPrefix("/business").Subrouter()
	business.Use(requireAuth, middleware.BusinessOwnerMiddleware(users))
	business.HandleFunc("/profile", c.Business.GetProfile).Methods("GET")
	business.HandleFunc("/profile", c.Business.UpdateProfile).Methods("PUT")
	business.HandleFunc("/products", c.Business.GetProducts).Methods("GET")
	business.HandleFunc("/orders", c.Business.GetOrders).Methods("GET")
	business.HandleFunc("/analytics", c.Business.GetAnalytics).Methods("GET")
}
