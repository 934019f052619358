package cli

import (
	"database/sql"

	"github.com/gorilla/mux"

	"go-storefront/clock"
	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/routes"
	"go-storefront/services"
	"go-storefront/utils"
)

// Mailer sends every email the storefront produces
type Mailer interface {
	controllers.Welcomer
	services.OrderNotifier
}

// App is the wired HTTP application
type App struct {
	Router *mux.Router
	Users  *services.UserService
	Orders *services.OrderService
	Tokens *utils.TokenIssuer
	Jobs   *utils.Jobs
}

// NewApp builds the services and controllers on top of db and mounts their routes
func NewApp(db *sql.DB, cfg *config.Config, clk clock.Clock, mailer Mailer, archive utils.OrderArchive) *App {
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, clk)
	jobs := utils.NewJobs(utils.DefaultJobTimeout)

	users := services.NewUserService(db, clk)
	products := services.NewProductService(db, clk)
	reviews := services.NewReviewService(db, clk)
	carts := services.NewCartService(db, clk)
	orders := services.NewOrderService(db, clk, mailer, archive, jobs)
	businesses := services.NewBusinessService(db, clk)

	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		Users:    controllers.NewUserController(users, tokens, mailer, jobs),
		Products: controllers.NewProductController(products),
		Reviews:  controllers.NewReviewController(reviews),
		Cart:     controllers.NewCartController(carts),
		Orders:   controllers.NewOrderController(orders),
		Business: controllers.NewBusinessController(businesses, orders),
		Health:   controllers.NewHealthController(db),
	}, tokens, users)

	return &App{Router: router, Users: users, Orders: orders, Tokens: tokens, Jobs: jobs}
}
