package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one product line in a cart or order. Price is never embedded;
// it is re-resolved from the catalog whenever the cart changes.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart represents a user's shopping cart. TotalItems counts distinct lines,
// TotalPrice is the sum of unit price times quantity over all lines.
// Version is bumped by every write that changes the lines. CheckoutAt is set
// while an order is being placed from the cart.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     primitive.ObjectID `bson:"user_id" json:"userId"`
	Items      []CartItem         `bson:"items" json:"items"`
	TotalPrice Money              `bson:"total_price" json:"totalPrice"`
	TotalItems int                `bson:"total_items" json:"totalItems"`
	Version    int64              `bson:"version" json:"version"`
	CheckoutAt *time.Time         `bson:"checkout_at,omitempty" json:"-"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NewCart returns the empty cart provisioned for a freshly registered user.
func NewCart(userID primitive.ObjectID) *Cart {
	now := time.Now().UTC()
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID primitive.ObjectID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CheckoutHeld reports whether a checkout started after staleBefore still
// holds the cart.
func (c *Cart) CheckoutHeld(staleBefore time.Time) bool {
	return c.CheckoutAt != nil && c.CheckoutAt.After(staleBefore)
}

// TotalQuantity sums the unit count over all lines.
func TotalQuantity(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
