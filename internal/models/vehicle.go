package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Vehicle represents a monitored vehicle.
type Vehicle struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user_id" json:"user_id"`
	Type            string             `bson:"type" json:"type"` // "ICE" or "EV"
	Make            string             `bson:"make" json:"make"`
	Model           string             `bson:"model" json:"model"`
	Year            int                `bson:"year" json:"year"`
	CurrentLocation Location           `bson:"current_location" json:"current_location"`
	FuelLevel       *float64           `bson:"fuel_level,omitempty" json:"fuel_level,omitempty"`       // percent, ICE
	BatteryLevel    *float64           `bson:"battery_level,omitempty" json:"battery_level,omitempty"` // percent, EV
	Mileage         float64            `bson:"mileage" json:"mileage"`                                 // in kilometers
	Status          string             `bson:"status" json:"status"`                                   // "active" or "inactive"
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
