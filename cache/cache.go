package cache

import (
	"context"
	"errors"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartCache is a read-through cache in front of the cart collection.
//
// A reader takes the Generation before loading from the database and hands
// it back to Set. Invalidate bumps the generation, so a fill that raced with
// a mutation is dropped instead of overwriting the newer state.
type CartCache interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Generation(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Set(ctx context.Context, cart *models.Cart, generation int64) error
	Invalidate(ctx context.Context, userID primitive.ObjectID) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleFill means the entry was invalidated after the caller read its generation.
	ErrStaleFill = errors.New("cache entry invalidated during fill")
)

// Noop is used when no Redis address is configured; every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, primitive.ObjectID) (*models.Cart, error) {
	return nil, ErrCacheMiss
}

func (Noop) Generation(context.Context, primitive.ObjectID) (int64, error) { return 0, nil }

func (Noop) Set(context.Context, *models.Cart, int64) error { return nil }

func (Noop) Invalidate(context.Context, primitive.ObjectID) error { return nil }
