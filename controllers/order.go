package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderEngine is the order behaviour the handlers need.
type OrderEngine interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, cancellable bool) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, requestingUserID primitive.ObjectID, newStatus models.OrderStatus) (*models.Order, error)
	ListOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
}

// OrderController handles order-related requests
type OrderController struct {
	Orders  OrderEngine
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewOrderController creates a new OrderController
func NewOrderController(orders OrderEngine, logger *slog.Logger, timeout time.Duration) *OrderController {
	return &OrderController{Orders: orders, Logger: logger, Timeout: timeout}
}

type createOrderRequest struct {
	Cancellable *bool `json:"cancellable"`
}

type updateOrderRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// CreateOrder places an order from the user's cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "cancellable should be a boolean")
		return
	}
	cancellable := true
	if req.Cancellable != nil {
		cancellable = *req.Cancellable
	}

	ctx, cancel := context.WithTimeout(r.Context(), oc.Timeout)
	defer cancel()
	order, err := oc.Orders.PlaceOrder(ctx, userID, cancellable)
	if err != nil {
		respondServiceError(w, oc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, "order placed", order)
}

// UpdateOrderStatus moves one of the user's orders to a new status
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "order data is required")
		return
	}
	orderID, ok := parseObjectID(w, req.OrderID, "orderId")
	if !ok {
		return
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oc.Timeout)
	defer cancel()
	order, err := oc.Orders.UpdateOrderStatus(ctx, orderID, userID, status)
	if err != nil {
		respondServiceError(w, oc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "order status updated", order)
}

// GetOrders lists the user's orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectID(w, mux.Vars(r)["userId"], "userId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oc.Timeout)
	defer cancel()
	orders, err := oc.Orders.ListOrders(ctx, userID)
	if err != nil {
		respondServiceError(w, oc.Logger, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, "orders", orders)
}
