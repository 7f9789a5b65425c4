package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/vehicle-monitor/internal/models"
)

// MongoVehicleCollection wraps a MongoDB collection for vehicle operations.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) (primitive.ObjectID, error) {
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt

	_, err := c.Collection.InsertOne(ctx, vehicle)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return vehicle.ID, nil
}

// FindVehicles returns all vehicles belonging to the user.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, userID string) ([]models.Vehicle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID, scoped to the owning user.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&vehicle)
	if err == mongo.ErrNoDocuments {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &vehicle, nil
}

// UpdateVehicle applies field updates to a vehicle by its ID.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, userID string, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if result.MatchedCount == 0 {
		return ErrVehicleNotFound
	}
	return nil
}
