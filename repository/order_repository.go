package repository

import (
	"context"
	"fmt"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{collection: db.Collection(ordersCollection)}
}

func (m *mongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	id, err := insertOne(ctx, m.collection, order)
	if err != nil {
		return err
	}
	order.ID = id.(primitive.ObjectID)
	return nil
}

func (m *mongoOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := findOne(ctx, m.collection, bson.M{"_id": id, "is_deleted": false}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (m *mongoOrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, bson.M{"user_id": userID, "is_deleted": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("error decoding orders: %w", err)
	}
	return orders, nil
}

func (m *mongoOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	filter := bson.M{"_id": id, "is_deleted": false, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": now()}}

	var order models.Order
	if err := findOneAndUpdate(ctx, m.collection, filter, update, &order, ErrPreconditionFailed); err != nil {
		return nil, err
	}
	return &order, nil
}
