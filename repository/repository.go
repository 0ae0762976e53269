package repository

import (
	"context"
	"errors"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrPreconditionFailed means the conditional update matched no document:
	// either the document is gone or its state changed since it was read.
	ErrPreconditionFailed = errors.New("document changed or missing")
)

// CartRepository persists carts. Every mutating method is a single atomic
// document update guarded by the precondition in its name.
type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// IncrementItem adds one unit to a line that is already in the cart.
	IncrementItem(ctx context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error)
	// PushItem appends a quantity-1 line for a product not yet in the cart.
	PushItem(ctx context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error)
	// DecrementItem removes one unit from a line whose quantity is above one.
	DecrementItem(ctx context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error)
	// PullItem drops a line whose quantity is still quantity and takes amount off the total.
	PullItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int, amount models.Money) (*models.Cart, error)
	// Empty resets a cart that still has lines.
	Empty(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// BeginCheckout marks a non-empty cart still at version as being checked
	// out, unless another checkout started after staleBefore holds it.
	BeginCheckout(ctx context.Context, userID primitive.ObjectID, version int64, staleBefore time.Time) (*models.Cart, error)
	// SettleCheckout replaces the lines of a cart still at version with items
	// and releases the checkout mark.
	SettleCheckout(ctx context.Context, userID primitive.ObjectID, version int64, items []models.CartItem, total models.Money) (*models.Cart, error)
	// AbortCheckout releases the checkout mark without touching the lines.
	AbortCheckout(ctx context.Context, userID primitive.ObjectID) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// GetByID ignores soft-deleted orders.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	// UpdateStatus moves the order from one status to another only if it is still in from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error)
}

// ProductFilter narrows a catalog listing. Zero fields do not filter.
type ProductFilter struct {
	Sizes            []string
	Name             string
	PriceGreaterThan *models.Money
	PriceLessThan    *models.Money
	PriceSort        int
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	// GetByID ignores soft-deleted products.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	TitleTaken(ctx context.Context, title string) (bool, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Taken reports whether another user than except already uses value for field.
	Taken(ctx context.Context, field, value string, except primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
