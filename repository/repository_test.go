package repository

import (
	"context"
	"testing"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := utils.ConnectDB(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("testdb")
	require.NoError(t, CreateIndexes(ctx, db))
	return db
}

func TestCartRepository_AtomicMutations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	userID := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	ten, twenty := models.MoneyFromInt(10), models.MoneyFromInt(20)

	require.NoError(t, repo.Create(ctx, models.NewCart(userID)))

	_, err := repo.PushItem(ctx, userID, a, ten)
	require.NoError(t, err)
	_, err = repo.PushItem(ctx, userID, a, ten)
	assert.ErrorIs(t, err, ErrPreconditionFailed, "second push of the same product must not match")

	_, err = repo.IncrementItem(ctx, userID, a, ten)
	require.NoError(t, err)
	cart, err := repo.PushItem(ctx, userID, b, twenty)
	require.NoError(t, err)

	assert.Equal(t, 2, cart.TotalItems)
	assert.True(t, cart.TotalPrice.Equal(models.MoneyFromInt(40)), "got %s", cart.TotalPrice)
	item, ok := cart.Item(a)
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)

	cart, err = repo.DecrementItem(ctx, userID, a, ten)
	require.NoError(t, err)
	_, err = repo.DecrementItem(ctx, userID, a, ten)
	assert.ErrorIs(t, err, ErrPreconditionFailed, "quantity 1 cannot be decremented in place")

	_, err = repo.PullItem(ctx, userID, b, 3, twenty.Times(3))
	assert.ErrorIs(t, err, ErrPreconditionFailed, "stale quantity must not match")

	cart, err = repo.PullItem(ctx, userID, b, 1, twenty)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.TotalItems)
	assert.True(t, cart.TotalPrice.Equal(ten), "got %s", cart.TotalPrice)

	cart, err = repo.Empty(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalPrice.IsZero())

	_, err = repo.Empty(ctx, userID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestCartRepository_Checkout(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	userID := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	ten := models.MoneyFromInt(10)
	require.NoError(t, repo.Create(ctx, models.NewCart(userID)))

	_, err := repo.BeginCheckout(ctx, userID, 0, time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, ErrPreconditionFailed, "an empty cart cannot be checked out")

	cart, err := repo.PushItem(ctx, userID, a, ten)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cart.Version)

	staleBefore := time.Now().Add(-time.Minute)
	snapshot, err := repo.BeginCheckout(ctx, userID, cart.Version, staleBefore)
	require.NoError(t, err)
	require.NotNil(t, snapshot.CheckoutAt)
	assert.Equal(t, cart.Version, snapshot.Version)

	_, err = repo.BeginCheckout(ctx, userID, cart.Version, staleBefore)
	assert.ErrorIs(t, err, ErrPreconditionFailed, "the lease is held")

	_, err = repo.PushItem(ctx, userID, b, ten)
	require.NoError(t, err, "items can still be added during checkout")

	_, err = repo.SettleCheckout(ctx, userID, snapshot.Version, nil, models.Money{})
	assert.ErrorIs(t, err, ErrPreconditionFailed, "settle must not overwrite a newer cart")

	current, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	settled, err := repo.SettleCheckout(ctx, userID, current.Version, []models.CartItem{{ProductID: b, Quantity: 1}}, ten)
	require.NoError(t, err)
	assert.Nil(t, settled.CheckoutAt)
	assert.Equal(t, 1, settled.TotalItems)
	assert.True(t, settled.TotalPrice.Equal(ten))
	assert.Equal(t, current.Version+1, settled.Version)

	_, err = repo.BeginCheckout(ctx, userID, settled.Version, staleBefore)
	require.NoError(t, err)
	require.NoError(t, repo.AbortCheckout(ctx, userID))
	released, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, released.CheckoutAt)
}

func TestCartRepository_UniquePerUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	require.NoError(t, repo.Create(ctx, models.NewCart(userID)))
	assert.ErrorIs(t, repo.Create(ctx, models.NewCart(userID)), ErrDuplicate)

	_, err := repo.GetByUser(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderRepository_StatusCompareAndSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	cart := models.NewCart(primitive.NewObjectID())
	cart.Items = []models.CartItem{{ProductID: primitive.NewObjectID(), Quantity: 2}}
	cart.TotalItems = 1
	cart.TotalPrice = models.MustMoney("19.98")
	order := models.NewOrder(cart, true)
	require.NoError(t, repo.Create(ctx, order))

	updated, err := repo.UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err = repo.UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	orders, err := repo.ListByUser(ctx, cart.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].TotalPrice.Equal(models.MustMoney("19.98")))
}

func TestProductRepository_ListAndSoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	shirt := &models.Product{Title: "Blue Shirt", Price: models.MoneyFromInt(500), AvailableSizes: []string{"M", "L"}}
	jeans := &models.Product{Title: "Jeans", Price: models.MoneyFromInt(1500), AvailableSizes: []string{"XL"}}
	require.NoError(t, repo.Create(ctx, shirt))
	require.NoError(t, repo.Create(ctx, jeans))
	assert.ErrorIs(t, repo.Create(ctx, &models.Product{Title: "Jeans"}), ErrDuplicate)

	gt := models.MoneyFromInt(100)
	list, err := repo.List(ctx, ProductFilter{PriceGreaterThan: &gt, PriceSort: -1})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Jeans", list[0].Title)

	list, err = repo.List(ctx, ProductFilter{Sizes: []string{"M"}, Name: "shirt"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shirt.ID, list[0].ID)

	updated, err := repo.Update(ctx, shirt.ID, bson.M{"price": models.MoneyFromInt(450)})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(models.MoneyFromInt(450)))

	require.NoError(t, repo.SoftDelete(ctx, shirt.ID))
	_, err = repo.GetByID(ctx, shirt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.SoftDelete(ctx, shirt.ID), ErrNotFound)
}

func TestUserRepository_Taken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{FName: "Ravi", Email: "ravi@example.com", Phone: "9876543210"}
	require.NoError(t, repo.Create(ctx, user))

	taken, err := repo.Taken(ctx, "email", "ravi@example.com", primitive.NilObjectID)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.Taken(ctx, "email", "ravi@example.com", user.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a user's own email is not taken for them")

	found, err := repo.GetByEmail(ctx, "ravi@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), ErrNotFound)
}
