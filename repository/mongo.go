package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	cartsCollection    = "carts"
	ordersCollection   = "orders"
	productsCollection = "products"
	usersCollection    = "users"
)

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

// findOneAndUpdate applies update to the single document matching filter and
// decodes the result into out. A miss is reported as miss.
func findOneAndUpdate(ctx context.Context, coll *mongo.Collection, filter, update bson.M, out interface{}, miss error) error {
	err := coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return miss
		}
		return fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	return nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}) (interface{}, error) {
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert %s: %w", coll.Name(), err)
	}
	return res.InsertedID, nil
}

func now() time.Time {
	return time.Now().UTC()
}

// CreateIndexes declares the unique keys the handlers rely on.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		cartsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "title", Value: 1}}, Options: unique},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: unique},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}
