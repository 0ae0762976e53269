package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/RaviiSharma/Amazon-Clone/repository"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserLookup finds the customer an order confirmation goes to.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type OrderService struct {
	orders repository.OrderRepository
	carts  *CartService
	users  UserLookup
	mailer utils.Mailer
	logger *slog.Logger
}

// NewOrderService wires the order engine. users and mailer may be nil, in
// which case no confirmation email is sent.
func NewOrderService(orders repository.OrderRepository, carts *CartService, users UserLookup, mailer utils.Mailer, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		carts:  carts,
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

// PlaceOrder turns the user's cart into a pending order and takes the
// ordered lines off the cart. The cart is leased for the duration so a second
// checkout of the same lines is refused. The order is written before the
// cart is settled; a failed settle leaves a stale cart but never loses the
// order.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, cancellable bool) (*models.Order, error) {
	snapshot, err := s.carts.beginCheckout(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Once the lease is held the cart must be released or settled even if
	// the caller goes away.
	cartCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	order := models.NewOrder(snapshot, cancellable)
	if err := s.orders.Create(ctx, order); err != nil {
		if abortErr := s.carts.abortCheckout(cartCtx, userID); abortErr != nil {
			s.logger.Error("checkout lease not released", "user_id", userID.Hex(), "error", abortErr)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.settleCheckout(cartCtx, snapshot); err != nil {
		s.logger.Error("order placed but cart was not settled",
			"user_id", userID.Hex(), "order_id", order.ID.Hex(), "error", err)
	}

	s.sendConfirmation(order)
	return order, nil
}

// UpdateOrderStatus applies a status transition requested by the order's owner.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, requestingUserID primitive.ObjectID, newStatus models.OrderStatus) (*models.Order, error) {
	if _, err := models.ParseOrderStatus(string(newStatus)); err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		order, err := s.GetOrder(ctx, orderID, requestingUserID)
		if err != nil {
			return nil, err
		}
		if err := order.CanTransition(newStatus); err != nil {
			return nil, &Error{Kind: KindInvalidTransition, Message: err.Error(), Err: err}
		}

		updated, err := s.orders.UpdateStatus(ctx, orderID, order.Status, newStatus)
		if errors.Is(err, repository.ErrPreconditionFailed) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}
		return updated, nil
	}
	return nil, newError(KindConflict, "order changed concurrently, try again")
}

// GetOrder returns a live order owned by requestingUserID.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requestingUserID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, "no order found by %s", orderID.Hex())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != requestingUserID {
		return nil, newError(KindForbidden, "unauthorized access: order is not of this user")
	}
	return order, nil
}

// ListOrders returns the user's live orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) sendConfirmation(order *models.Order) {
	if s.mailer == nil || s.users == nil {
		return
	}
	go func(order models.Order) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.users.GetByID(ctx, order.UserID)
		if err != nil {
			s.logger.Warn("order confirmation skipped, user lookup failed", "order_id", order.ID.Hex(), "error", err)
			return
		}
		if err := utils.SendOrderConfirmationEmail(s.mailer, user.Email, &order); err != nil {
			s.logger.Warn("failed to send order confirmation", "to", user.Email, "error", err)
		}
	}(*order)
}
