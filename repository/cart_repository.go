package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{collection: db.Collection(cartsCollection)}
}

func (m *mongoCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	id, err := insertOne(ctx, m.collection, cart)
	if err != nil {
		return err
	}
	cart.ID = id.(primitive.ObjectID)
	return nil
}

func (m *mongoCartRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := findOne(ctx, m.collection, bson.M{"user_id": userID}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (m *mongoCartRepository) IncrementItem(ctx context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error) {
	filter := bson.M{"user_id": userID, "items.product_id": productID}
	update := bson.M{
		"$inc": bson.M{"items.$.quantity": 1, "total_price": price, "version": 1},
		"$set": bson.M{"updated_at": now()},
	}
	return m.update(ctx, filter, update)
}

func (m *mongoCartRepository) PushItem(ctx context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error) {
	filter := bson.M{"user_id": userID, "items.product_id": bson.M{"$ne": productID}}
	update := bson.M{
		"$push": bson.M{"items": models.CartItem{ProductID: productID, Quantity: 1}},
		"$inc":  bson.M{"total_items": 1, "total_price": price, "version": 1},
		"$set":  bson.M{"updated_at": now()},
	}
	return m.update(ctx, filter, update)
}

func (m *mongoCartRepository) DecrementItem(ctx context.Context, userID, productID primitive.ObjectID, price models.Money) (*models.Cart, error) {
	filter := bson.M{
		"user_id": userID,
		"items":   bson.M{"$elemMatch": bson.M{"product_id": productID, "quantity": bson.M{"$gt": 1}}},
	}
	update := bson.M{
		"$inc": bson.M{"items.$.quantity": -1, "total_price": price.Neg(), "version": 1},
		"$set": bson.M{"updated_at": now()},
	}
	return m.update(ctx, filter, update)
}

func (m *mongoCartRepository) PullItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int, amount models.Money) (*models.Cart, error) {
	filter := bson.M{
		"user_id": userID,
		"items":   bson.M{"$elemMatch": bson.M{"product_id": productID, "quantity": quantity}},
	}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"product_id": productID}},
		"$inc":  bson.M{"total_items": -1, "total_price": amount.Neg(), "version": 1},
		"$set":  bson.M{"updated_at": now()},
	}
	return m.update(ctx, filter, update)
}

func (m *mongoCartRepository) Empty(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	filter := bson.M{"user_id": userID, "items.0": bson.M{"$exists": true}}
	update := bson.M{
		"$set": bson.M{
			"items":       []models.CartItem{},
			"total_price": models.Money{},
			"total_items": 0,
			"updated_at":  now(),
		},
		"$inc": bson.M{"version": 1},
	}
	return m.update(ctx, filter, update)
}

func (m *mongoCartRepository) BeginCheckout(ctx context.Context, userID primitive.ObjectID, version int64, staleBefore time.Time) (*models.Cart, error) {
	filter := bson.M{
		"user_id": userID,
		"version": version,
		"items.0": bson.M{"$exists": true},
		"$or": bson.A{
			bson.M{"checkout_at": nil},
			bson.M{"checkout_at": bson.M{"$lte": staleBefore}},
		},
	}
	update := bson.M{"$set": bson.M{"checkout_at": now()}}
	return m.update(ctx, filter, update)
}

func (m *mongoCartRepository) SettleCheckout(ctx context.Context, userID primitive.ObjectID, version int64, items []models.CartItem, total models.Money) (*models.Cart, error) {
	if items == nil {
		items = []models.CartItem{}
	}
	filter := bson.M{"user_id": userID, "version": version}
	update := bson.M{
		"$set": bson.M{
			"items":       items,
			"total_price": total,
			"total_items": len(items),
			"updated_at":  now(),
		},
		"$unset": bson.M{"checkout_at": ""},
		"$inc":   bson.M{"version": 1},
	}
	return m.update(ctx, filter, update)
}

func (m *mongoCartRepository) AbortCheckout(ctx context.Context, userID primitive.ObjectID) error {
	_, err := m.collection.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$unset": bson.M{"checkout_at": ""}})
	if err != nil {
		return fmt.Errorf("abort checkout: %w", err)
	}
	return nil
}

func (m *mongoCartRepository) update(ctx context.Context, filter, update bson.M) (*models.Cart, error) {
	var cart models.Cart
	if err := findOneAndUpdate(ctx, m.collection, filter, update, &cart, ErrPreconditionFailed); err != nil {
		return nil, err
	}
	return &cart, nil
}
