package routes

import (
	"net/http"

	"github.com/RaviiSharma/Amazon-Clone/controllers"
	"github.com/RaviiSharma/Amazon-Clone/middleware"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/gorilla/mux"
)

// Controllers groups the handlers the route table dispatches to.
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Carts    *controllers.CartController
	Orders   *controllers.OrderController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, tokens *utils.TokenManager) {
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, "ok", nil)
	}).Methods(http.MethodGet)

	// Public routes
	router.HandleFunc("/register", c.Users.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", c.Users.Login).Methods(http.MethodPost)

	// Product routes
	router.HandleFunc("/products", c.Products.CreateProduct).Methods(http.MethodPost)
	router.HandleFunc("/products", c.Products.GetProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{productId}", c.Products.GetProduct).Methods(http.MethodGet)
	router.HandleFunc("/products/{productId}", c.Products.UpdateProduct).Methods(http.MethodPut)
	router.HandleFunc("/products/{productId}", c.Products.DeleteProduct).Methods(http.MethodDelete)

	// Profile routes
	profile := router.PathPrefix("/user/{userId}").Subrouter()
	profile.Use(middleware.Authenticate(tokens), middleware.AuthorizeOwner)
	profile.HandleFunc("/profile", c.Users.GetProfile).Methods(http.MethodGet)
	profile.HandleFunc("/profile", c.Users.UpdateProfile).Methods(http.MethodPut)

	// Cart and order routes
	owned := router.PathPrefix("/users/{userId}").Subrouter()
	owned.Use(middleware.Authenticate(tokens), middleware.AuthorizeOwner)
	owned.HandleFunc("/cart", c.Carts.AddToCart).Methods(http.MethodPost)
	owned.HandleFunc("/cart", c.Carts.RemoveFromCart).Methods(http.MethodPut)
	owned.HandleFunc("/cart", c.Carts.GetCart).Methods(http.MethodGet)
	owned.HandleFunc("/cart", c.Carts.EmptyCart).Methods(http.MethodDelete)
	owned.HandleFunc("/orders", c.Orders.CreateOrder).Methods(http.MethodPost)
	owned.HandleFunc("/orders", c.Orders.UpdateOrderStatus).Methods(http.MethodPut)
	owned.HandleFunc("/orders", c.Orders.GetOrders).Methods(http.MethodGet)
}
