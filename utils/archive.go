package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// OrderArchive stores order lifecycle events outside the relational store
type OrderArchive interface {
	Record(ctx context.Context, event models.OrderEvent) error
	Events(ctx context.Context, orderID string) ([]models.OrderEvent, error)
	Close(ctx context.Context) error
}

// MongoArchive keeps order events in a MongoDB collection
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// ConnectArchive connects to MongoDB and returns an archive backed by the
// order_events collection of database
func ConnectArchive(ctx context.Context, uri, database string) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	log.Println("Connected to MongoDB order archive")
	return &MongoArchive{
		client:     client,
		collection: client.Database(database).Collection("order_events"),
	}, nil
}

// Record appends an event
func (a *MongoArchive) Record(ctx context.Context, event models.OrderEvent) error {
	if _, err := a.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("archive %s event for order %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}

// Events returns the events of one order, oldest first
func (a *MongoArchive) Events(ctx context.Context, orderID string) ([]models.OrderEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cursor, err := a.collection.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find events for order %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	events := []models.OrderEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events for order %s: %w", orderID, err)
	}
	return events, nil
}

// Close disconnects from MongoDB
func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

// NoopArchive discards events. Used when MONGO_URI is not set.
type NoopArchive struct{}

func (NoopArchive) Record(ctx context.Context, event models.OrderEvent) error {
	return nil
}

func (NoopArchive) Events(ctx context.Context, orderID string) ([]models.OrderEvent, error) {
	return []models.OrderEvent{}, nil
}

func (NoopArchive) Close(ctx context.Context) error { return nil }
