package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/RaviiSharma/Amazon-Clone/service"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartEngine is the cart behaviour the handlers need.
type CartEngine interface {
	AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID, mode service.RemoveMode) (*models.Cart, error)
	GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
}

// CartController handles cart-related requests
type CartController struct {
	Carts   CartEngine
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewCartController creates a new CartController
func NewCartController(carts CartEngine, logger *slog.Logger, timeout time.Duration) *CartController {
	return &CartController{Carts: carts, Logger: logger, Timeout: timeout}
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
}

type removeFromCartRequest struct {
	ProductID     string      `json:"productId"`
	RemoveProduct interface{} `json:"removeProduct"`
}

// AddToCart adds one unit of a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	productID, ok := parseObjectID(w, req.ProductID, "productId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout)
	defer cancel()
	cart, err := cc.Carts.AddItem(ctx, userID, productID)
	if err != nil {
		respondServiceError(w, cc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, "product added to cart", cart)
}

// RemoveFromCart reduces a product by one unit (removeProduct 1) or drops
// the whole line (removeProduct 0).
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}

	var req removeFromCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "data is required to remove products in cart")
		return
	}
	productID, ok := parseObjectID(w, req.ProductID, "productId")
	if !ok {
		return
	}
	mode, ok := parseRemoveMode(req.RemoveProduct)
	if !ok {
		badRequest(w, "removeProduct is required and its value must be either 0 or 1")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout)
	defer cancel()
	cart, err := cc.Carts.RemoveItem(ctx, userID, productID, mode)
	if err != nil {
		respondServiceError(w, cc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "product removed from cart", cart)
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout)
	defer cancel()
	cart, err := cc.Carts.GetCart(ctx, userID)
	if err != nil {
		respondServiceError(w, cc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "cart details", cart)
}

// EmptyCart removes every line from the user's cart
func (cc *CartController) EmptyCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout)
	defer cancel()
	cart, err := cc.Carts.Clear(ctx, userID)
	if err != nil {
		respondServiceError(w, cc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "cart made empty successfully", cart)
}

// parseRemoveMode accepts 0/1 as JSON numbers or strings.
func parseRemoveMode(v interface{}) (service.RemoveMode, bool) {
	switch v {
	case "1", float64(1):
		return service.DecrementOne, true
	case "0", float64(0):
		return service.RemoveAll, true
	}
	return 0, false
}
