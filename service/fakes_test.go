package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/RaviiSharma/Amazon-Clone/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCarts applies the same guarded updates as the Mongo repository.
// staleWrites makes the next n mutations report a precondition failure.
// beforeRead and afterRead run once around the next GetByUser, outside the
// lock, so a test can interleave another request with a read.
type fakeCarts struct {
	mu          sync.Mutex
	carts       map[primitive.ObjectID]*models.Cart
	staleWrites int
	settleErr   error
	beforeRead  func(ctx context.Context)
	afterRead   func()
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[primitive.ObjectID]*models.Cart{}}
}

func (f *fakeCarts) Create(_ context.Context, cart *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.carts[cart.UserID]; ok {
		return repository.ErrDuplicate
	}
	cart.ID = primitive.NewObjectID()
	f.carts[cart.UserID] = clone(cart)
	return nil
}

func (f *fakeCarts) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	before := f.beforeRead
	f.beforeRead = nil
	f.mu.Unlock()
	if before != nil {
		before(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	cart, ok := f.carts[userID]
	var out *models.Cart
	if ok {
		out = clone(cart)
	}
	after := f.afterRead
	f.afterRead = nil
	f.mu.Unlock()

	if after != nil {
		after()
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return out, nil
}

func (f *fakeCarts) IncrementItem(_ context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error) {
	return f.mutate(userID, func(c *models.Cart) bool {
		i := index(c, productID)
		if i < 0 {
			return false
		}
		c.Items[i].Quantity++
		c.TotalPrice = c.TotalPrice.Add(price)
		return true
	})
}

func (f *fakeCarts) PushItem(_ context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error) {
	return f.mutate(userID, func(c *models.Cart) bool {
		if index(c, productID) >= 0 {
			return false
		}
		c.Items = append(c.Items, models.CartItem{ProductID: productID, Quantity: 1})
		c.TotalItems++
		c.TotalPrice = c.TotalPrice.Add(price)
		return true
	})
}

func (f *fakeCarts) DecrementItem(_ context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error) {
	return f.mutate(userID, func(c *models.Cart) bool {
		i := index(c, productID)
		if i < 0 || c.Items[i].Quantity <= 1 {
			return false
		}
		c.Items[i].Quantity--
		c.TotalPrice = c.TotalPrice.Sub(price)
		return true
	})
}

func (f *fakeCarts) PullItem(_ context.Context, userID, productID primitive.ObjectID, quantity int, amount models.Money) (*models.Cart, error) {
	return f.mutate(userID, func(c *models.Cart) bool {
		i := index(c, productID)
		if i < 0 || c.Items[i].Quantity != quantity {
			return false
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		c.TotalItems--
		c.TotalPrice = c.TotalPrice.Sub(amount)
		return true
	})
}

func (f *fakeCarts) Empty(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return f.mutate(userID, func(c *models.Cart) bool {
		if len(c.Items) == 0 {
			return false
		}
		c.Items = []models.CartItem{}
		c.TotalItems = 0
		c.TotalPrice = models.Money{}
		return true
	})
}

func (f *fakeCarts) BeginCheckout(_ context.Context, userID primitive.ObjectID, version int64, staleBefore time.Time) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok || c.Version != version || len(c.Items) == 0 {
		return nil, repository.ErrPreconditionFailed
	}
	if c.CheckoutAt != nil && c.CheckoutAt.After(staleBefore) {
		return nil, repository.ErrPreconditionFailed
	}
	now := time.Now().UTC()
	c.CheckoutAt = &now
	return clone(c), nil
}

func (f *fakeCarts) SettleCheckout(_ context.Context, userID primitive.ObjectID, version int64, items []models.CartItem, total models.Money) (*models.Cart, error) {
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	return f.mutate(userID, func(c *models.Cart) bool {
		if c.Version != version {
			return false
		}
		c.Items = append([]models.CartItem{}, items...)
		c.TotalItems = len(items)
		c.TotalPrice = total
		c.CheckoutAt = nil
		return true
	})
}

func (f *fakeCarts) AbortCheckout(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[userID]; ok {
		c.CheckoutAt = nil
	}
	return nil
}

func (f *fakeCarts) mutate(userID primitive.ObjectID, apply func(*models.Cart) bool) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleWrites > 0 {
		f.staleWrites--
		return nil, repository.ErrPreconditionFailed
	}
	cart, ok := f.carts[userID]
	if !ok || !apply(cart) {
		return nil, repository.ErrPreconditionFailed
	}
	cart.Version++
	return clone(cart), nil
}

func index(c *models.Cart, productID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func clone(c *models.Cart) *models.Cart {
	out := *c
	out.Items = append([]models.CartItem{}, c.Items...)
	return &out
}

type fakeCatalog map[primitive.ObjectID]*models.Product

func (f fakeCatalog) GetByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f[id]
	if !ok || p.IsDeleted {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f fakeCatalog) add(price string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f[id] = &models.Product{ID: id, Title: "product " + id.Hex(), Price: models.MustMoney(price)}
	return id
}

// onCreate runs once after the next order is stored, outside the lock.
type fakeOrders struct {
	mu        sync.Mutex
	orders    map[primitive.ObjectID]*models.Order
	createErr error
	racer     func(*models.Order)
	onCreate  func(*models.Order)
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[primitive.ObjectID]*models.Order{}}
}

func (f *fakeOrders) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	if f.createErr != nil {
		f.mu.Unlock()
		return f.createErr
	}
	order.ID = primitive.NewObjectID()
	cp := *order
	f.orders[order.ID] = &cp
	hook := f.onCreate
	f.onCreate = nil
	f.mu.Unlock()

	if hook != nil {
		hook(order)
	}
	return nil
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeOrders) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.IsDeleted {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID && !o.IsDeleted {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if ok && f.racer != nil {
		f.racer(o)
		f.racer = nil
	}
	if !ok || o.IsDeleted || o.Status != from {
		return nil, repository.ErrPreconditionFailed
	}
	o.Status = to
	cp := *o
	return &cp, nil
}

type fakeUsers map[primitive.ObjectID]*models.User

func (f fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type chanMailer chan string

func (c chanMailer) Send(toEmail, _, _ string) error {
	c <- toEmail
	return nil
}
