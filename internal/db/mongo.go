package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/vehicle-monitor/internal/models"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the trip store relies on. The partial
// unique index on (user_id, vehicle_id) restricted to in-progress trips is
// what makes concurrent starts for the same vehicle a conditional write:
// at most one insert wins, the rest fail with a duplicate key error.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	trips := database.Collection("trips")

	_, err := trips.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "vehicle_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.TripStatusInProgress}),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "vehicle_id", Value: 1}, {Key: "start_time", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create trip indexes: %w", err)
	}

	notifications := database.Collection("notifications")
	_, err = notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification index: %w", err)
	}

	return nil
}
