package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/cache"
	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/RaviiSharma/Amazon-Clone/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

const (
	// maxAttempts bounds how often a mutation re-reads the cart after a
	// concurrent request invalidated the state it decided on.
	maxAttempts = 3
	// checkoutLease is how long a started checkout holds the cart against
	// other checkouts. A process that dies mid-checkout frees it after this.
	checkoutLease = 2 * time.Minute
	// loadTimeout bounds a shared cache-miss load, which no single caller owns.
	loadTimeout = 5 * time.Second
)

// RemoveMode selects how RemoveItem treats the line.
type RemoveMode int

const (
	RemoveAll RemoveMode = iota
	DecrementOne
)

// Catalog resolves live, non-deleted products.
type Catalog interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type CartService struct {
	carts    repository.CartRepository
	products Catalog
	cache    cache.CartCache
	logger   *slog.Logger
	sfg      singleflight.Group
}

func NewCartService(carts repository.CartRepository, products Catalog, c cache.CartCache, logger *slog.Logger) *CartService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CartService{
		carts:    carts,
		products: products,
		cache:    c,
		logger:   logger,
	}
}

// CreateCart provisions the empty cart of a new user.
func (s *CartService) CreateCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart := models.NewCart(userID)
	if err := s.carts.Create(ctx, cart); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(KindInvalidState, "cart already exists for user %s", userID.Hex())
		}
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// AddItem puts one unit of productID into the cart, merging with an
// existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		cart, err := s.loadCart(ctx, userID)
		if err != nil {
			return nil, err
		}

		var updated *models.Cart
		if _, ok := cart.Item(productID); ok {
			updated, err = s.carts.IncrementItem(ctx, userID, productID, product.Price)
		} else {
			updated, err = s.carts.PushItem(ctx, userID, productID, product.Price)
		}
		if errors.Is(err, repository.ErrPreconditionFailed) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("add item: %w", err)
		}
		s.invalidate(userID)
		return updated, nil
	}
	return nil, newError(KindConflict, "cart changed concurrently, try again")
}

// RemoveItem decrements or drops the line for productID.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID, mode RemoveMode) (*models.Cart, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		cart, err := s.loadCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		item, ok := cart.Item(productID)
		if !ok {
			return nil, newError(KindNotFound, "no product found by %s inside cart", productID.Hex())
		}

		var updated *models.Cart
		if mode == DecrementOne && item.Quantity > 1 {
			updated, err = s.carts.DecrementItem(ctx, userID, productID, product.Price)
		} else {
			updated, err = s.carts.PullItem(ctx, userID, productID, item.Quantity, product.Price.Times(item.Quantity))
		}
		if errors.Is(err, repository.ErrPreconditionFailed) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("remove item: %w", err)
		}
		s.invalidate(userID)
		return updated, nil
	}
	return nil, newError(KindConflict, "cart changed concurrently, try again")
}

// GetCart reads through the cache. Concurrent misses for one user share a
// single database read that is not tied to any one caller's context.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	ch := s.sfg.DoChan(userID.Hex(), func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.readThrough(lctx, userID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Cart), nil
	}
}

func (s *CartService) readThrough(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("cache get error", "user_id", userID.Hex(), "error", err)
	}

	// The generation must be read before the database so a mutation landing
	// in between is detected by Set.
	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		s.logger.Warn("cache generation error", "user_id", userID.Hex(), "error", genErr)
	}

	cart, err = s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.Set(ctx, cart, gen); err != nil && !errors.Is(err, cache.ErrStaleFill) {
			s.logger.Warn("cache set error", "user_id", userID.Hex(), "error", err)
		}
	}
	return cart, nil
}

// Clear empties a non-empty cart. Clearing an empty cart is an error.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		cart, err := s.carts.Empty(ctx, userID)
		if err == nil {
			s.invalidate(userID)
			return cart, nil
		}
		if !errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, fmt.Errorf("clear cart: %w", err)
		}

		current, err := s.loadCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		if current.IsEmpty() {
			return nil, newError(KindInvalidState, "cart is already empty")
		}
	}
	return nil, newError(KindConflict, "cart changed concurrently, try again")
}

// beginCheckout takes the checkout lease on the user's cart and returns the
// snapshot it holds. Only one checkout at a time can hold a cart.
func (s *CartService) beginCheckout(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		cart, err := s.loadCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cart.IsEmpty() {
			return nil, newError(KindEmptyCart, "cart is empty")
		}
		staleBefore := time.Now().UTC().Add(-checkoutLease)
		if cart.CheckoutHeld(staleBefore) {
			return nil, newError(KindConflict, "an order is already being placed from this cart")
		}

		snapshot, err := s.carts.BeginCheckout(ctx, userID, cart.Version, staleBefore)
		if errors.Is(err, repository.ErrPreconditionFailed) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("begin checkout: %w", err)
		}
		return snapshot, nil
	}
	return nil, newError(KindConflict, "cart changed concurrently, try again")
}

// abortCheckout releases the lease after the order could not be written.
func (s *CartService) abortCheckout(ctx context.Context, userID primitive.ObjectID) error {
	return s.carts.AbortCheckout(ctx, userID)
}

// settleCheckout takes the ordered lines off the cart and releases the
// lease. Units added while the order was written stay in the cart.
func (s *CartService) settleCheckout(ctx context.Context, snapshot *models.Cart) error {
	defer s.invalidate(snapshot.UserID)

	current := snapshot
	for attempt := 0; attempt < maxAttempts; attempt++ {
		items, total, err := s.remainder(ctx, snapshot, current)
		if err != nil {
			return err
		}

		_, err = s.carts.SettleCheckout(ctx, snapshot.UserID, current.Version, items, total)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrPreconditionFailed) {
			return fmt.Errorf("settle checkout: %w", err)
		}

		if current, err = s.loadCart(ctx, snapshot.UserID); err != nil {
			return err
		}
	}
	return newError(KindConflict, "cart changed concurrently during checkout")
}

// remainder computes what is left of current once the snapshot's units are
// removed. When every ordered unit is still present the snapshot total comes
// off as is; units already removed by a concurrent request are not charged
// twice, and the rest is priced from the catalog like RemoveItem does.
func (s *CartService) remainder(ctx context.Context, snapshot, current *models.Cart) ([]models.CartItem, models.Money, error) {
	if current.Version == snapshot.Version {
		return []models.CartItem{}, models.Money{}, nil
	}

	items := []models.CartItem{}
	allPresent := true
	for _, ordered := range snapshot.Items {
		if line, ok := current.Item(ordered.ProductID); !ok || line.Quantity < ordered.Quantity {
			allPresent = false
		}
	}

	total := current.TotalPrice
	if allPresent {
		total = total.Sub(snapshot.TotalPrice)
	}
	for _, line := range current.Items {
		ordered, _ := snapshot.Item(line.ProductID)
		taken := min(ordered.Quantity, line.Quantity)
		if left := line.Quantity - taken; left > 0 {
			items = append(items, models.CartItem{ProductID: line.ProductID, Quantity: left})
		}
		if allPresent || taken == 0 {
			continue
		}
		product, err := s.findProduct(ctx, line.ProductID)
		if err != nil {
			return nil, models.Money{}, err
		}
		total = total.Sub(product.Price.Times(taken))
	}
	return items, total, nil
}

func (s *CartService) loadCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, "no cart found for user %s", userID.Hex())
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) findProduct(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, "no product found by %s", productID.Hex())
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *CartService) invalidate(userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("cache invalidate error", "user_id", userID.Hex(), "error", err)
	}
}
