package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus accepts only the three known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("status should be one of [pending, completed, cancelled], got %q", s)
}

var (
	ErrAlreadyPending = errors.New("order status is already pending")
	ErrOrderCompleted = errors.New("order completed, its status can not be updated")
	ErrOrderCancelled = errors.New("order cancelled, its status can not be updated")
	ErrNotCancellable = errors.New("this order can not be cancelled")
)

// Order is a frozen snapshot of a cart taken at checkout. Only Status and
// the soft-delete fields change after creation.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	Items         []CartItem         `bson:"items" json:"items"`
	TotalPrice    Money              `bson:"total_price" json:"totalPrice"`
	TotalItems    int                `bson:"total_items" json:"totalItems"`
	TotalQuantity int                `bson:"total_quantity" json:"totalQuantity"`
	Cancellable   bool               `bson:"cancellable" json:"cancellable"`
	Status        OrderStatus        `bson:"status" json:"status"`
	IsDeleted     bool               `bson:"is_deleted" json:"isDeleted"`
	DeletedAt     *time.Time         `bson:"deleted_at" json:"deletedAt"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NewOrder snapshots the cart. The item slice is copied so later cart
// mutations never reach the order.
func NewOrder(cart *Cart, cancellable bool) *Order {
	items := make([]CartItem, len(cart.Items))
	copy(items, cart.Items)
	now := time.Now().UTC()
	return &Order{
		UserID:        cart.UserID,
		Items:         items,
		TotalPrice:    cart.TotalPrice,
		TotalItems:    cart.TotalItems,
		TotalQuantity: TotalQuantity(items),
		Cancellable:   cancellable,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanTransition reports whether the order may move to next.
//
//	pending   -> completed  always
//	pending   -> cancelled  only when cancellable
//	completed -> *          never
//	cancelled -> *          never
//	*         -> pending    never
func (o *Order) CanTransition(next OrderStatus) error {
	switch o.Status {
	case StatusCompleted:
		return ErrOrderCompleted
	case StatusCancelled:
		return ErrOrderCancelled
	}
	switch next {
	case StatusPending:
		return ErrAlreadyPending
	case StatusCancelled:
		if !o.Cancellable {
			return ErrNotCancellable
		}
	}
	return nil
}
