package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewOrder_SnapshotsCart(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	cart := NewCart(primitive.NewObjectID())
	cart.Items = []CartItem{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 3}}
	cart.TotalItems = 2
	cart.TotalPrice = MoneyFromInt(80)

	order := NewOrder(cart, true)
	cart.Items[0].Quantity = 99

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, 2, order.TotalItems)
	assert.Equal(t, 5, order.TotalQuantity)
	assert.True(t, order.TotalPrice.Equal(MoneyFromInt(80)))
	assert.Equal(t, 2, order.Items[0].Quantity, "order items must not alias the cart")
	assert.False(t, order.IsDeleted)
	assert.Nil(t, order.DeletedAt)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        OrderStatus
		cancellable bool
		to          OrderStatus
		want        error
	}{
		{"pending to completed", StatusPending, false, StatusCompleted, nil},
		{"pending to cancelled", StatusPending, true, StatusCancelled, nil},
		{"pending to cancelled when not cancellable", StatusPending, false, StatusCancelled, ErrNotCancellable},
		{"pending to pending", StatusPending, true, StatusPending, ErrAlreadyPending},
		{"completed is terminal", StatusCompleted, true, StatusCancelled, ErrOrderCompleted},
		{"completed to pending", StatusCompleted, true, StatusPending, ErrOrderCompleted},
		{"cancelled is terminal", StatusCancelled, true, StatusCompleted, ErrOrderCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from, Cancellable: tt.cancellable}
			err := o.CanTransition(tt.to)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}
