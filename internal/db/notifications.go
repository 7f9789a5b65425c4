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

// MongoNotificationCollection wraps a MongoDB collection for notification operations.
type MongoNotificationCollection struct {
	Collection *mongo.Collection
}

// InsertNotification inserts a notification record into the collection.
func (c *MongoNotificationCollection) InsertNotification(ctx context.Context, notification *models.Notification) (primitive.ObjectID, error) {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, notification)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return notification.ID, nil
}

// FindNotifications returns the user's notifications, newest first.
func (c *MongoNotificationCollection) FindNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return notifications, nil
}

// MarkRead marks a notification as read.
func (c *MongoNotificationCollection) MarkRead(ctx context.Context, userID string, id primitive.ObjectID) error {
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
