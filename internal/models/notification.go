package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Notification represents a dashboard notification for a user.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	VehicleID string             `json:"vehicle_id" bson:"vehicle_id"`
	Type      string             `json:"type" bson:"type"` // "trip_completed", "maintenance_due", "alert"
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
