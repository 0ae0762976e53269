package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{collection: db.Collection(productsCollection)}
}

func (m *mongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.CreatedAt = now()
	product.UpdatedAt = product.CreatedAt
	id, err := insertOne(ctx, m.collection, product)
	if err != nil {
		return err
	}
	product.ID = id.(primitive.ObjectID)
	return nil
}

func (m *mongoProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := findOne(ctx, m.collection, bson.M{"_id": id, "is_deleted": false}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (m *mongoProductRepository) TitleTaken(ctx context.Context, title string) (bool, error) {
	count, err := m.collection.CountDocuments(ctx, bson.M{"title": title})
	if err != nil {
		return false, fmt.Errorf("count products: %w", err)
	}
	return count > 0, nil
}

func (m *mongoProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	filter := bson.M{"is_deleted": false}
	if len(f.Sizes) > 0 {
		filter["available_sizes"] = bson.M{"$in": f.Sizes}
	}
	if f.Name != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Name), "$options": "i"}
	}
	price := bson.M{}
	if f.PriceGreaterThan != nil {
		price["$gt"] = *f.PriceGreaterThan
	}
	if f.PriceLessThan != nil {
		price["$lt"] = *f.PriceLessThan
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	opts := options.Find()
	if f.PriceSort != 0 {
		opts.SetSort(bson.D{{Key: "price", Value: f.PriceSort}})
	}

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("error reading products: %w", err)
	}
	return products, nil
}

func (m *mongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	set["updated_at"] = now()
	var product models.Product
	err := findOneAndUpdate(ctx, m.collection, bson.M{"_id": id, "is_deleted": false}, bson.M{"$set": set}, &product, ErrNotFound)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &product, nil
}

func (m *mongoProductRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	t := now()
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "deleted_at": t, "updated_at": t}},
	)
	if err != nil {
		return fmt.Errorf("error deleting product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
