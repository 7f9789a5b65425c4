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

// MongoMaintenanceCollection wraps a MongoDB collection for maintenance operations.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// InsertMaintenance inserts a maintenance record into the collection.
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, record *models.Maintenance) (primitive.ObjectID, error) {
	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err := c.Collection.InsertOne(ctx, record)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return record.ID, nil
}

// FindMaintenance returns maintenance records for the user, optionally
// restricted to one vehicle, most recent service first.
func (c *MongoMaintenanceCollection) FindMaintenance(ctx context.Context, userID, vehicleID string) ([]models.Maintenance, error) {
	filter := bson.M{"user_id": userID}
	if vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	opts := options.Find().SetSort(bson.D{{Key: "service_date", Value: -1}})

	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var records []models.Maintenance
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}
