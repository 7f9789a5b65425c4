package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripStatus represents the lifecycle state of a trip.
type TripStatus string

const (
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
)

// DrivingBehavior holds the event counters accumulated during a trip.
// Counters only grow while the trip is in progress and are frozen at completion.
type DrivingBehavior struct {
	HarshBraking      int `bson:"harsh_braking" json:"harsh_braking"`
	RapidAcceleration int `bson:"rapid_acceleration" json:"rapid_acceleration"`
	SharpCornering    int `bson:"sharp_cornering" json:"sharp_cornering"`
	Speeding          int `bson:"speeding" json:"speeding"`
}

// Valid reports whether all counters are non-negative.
func (b DrivingBehavior) Valid() bool {
	return b.HarshBraking >= 0 && b.RapidAcceleration >= 0 &&
		b.SharpCornering >= 0 && b.Speeding >= 0
}

// Merge returns the per-counter maximum of b and other. Counters never
// move backwards, so when two observations of the same trip disagree the
// higher count wins.
func (b DrivingBehavior) Merge(other DrivingBehavior) DrivingBehavior {
	return DrivingBehavior{
		HarshBraking:      max(b.HarshBraking, other.HarshBraking),
		RapidAcceleration: max(b.RapidAcceleration, other.RapidAcceleration),
		SharpCornering:    max(b.SharpCornering, other.SharpCornering),
		Speeding:          max(b.Speeding, other.Speeding),
	}
}

// Trip represents one journey for a vehicle. Completion fields are pointers
// and stay nil while the trip is in progress; they are all set together,
// exactly once, when the trip completes.
type Trip struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user_id" json:"user_id"`
	VehicleID       string             `bson:"vehicle_id" json:"vehicle_id"`
	Status          TripStatus         `bson:"status" json:"status"`
	StartTime       time.Time          `bson:"start_time" json:"start_time"`
	StartLocation   Location           `bson:"start_location" json:"start_location"`
	EndTime         *time.Time         `bson:"end_time,omitempty" json:"end_time,omitempty"`
	EndLocation     *Location          `bson:"end_location,omitempty" json:"end_location,omitempty"`
	Distance        *float64           `bson:"distance,omitempty" json:"distance,omitempty"`           // in kilometers
	Duration        *float64           `bson:"duration,omitempty" json:"duration,omitempty"`           // in minutes
	FuelUsed        *float64           `bson:"fuel_used,omitempty" json:"fuel_used,omitempty"`         // in liters
	AverageSpeed    *float64           `bson:"average_speed,omitempty" json:"average_speed,omitempty"` // in km/h
	MaxSpeed        *float64           `bson:"max_speed,omitempty" json:"max_speed,omitempty"`         // in km/h
	EcoScore        *float64           `bson:"eco_score,omitempty" json:"eco_score,omitempty"`         // 0-100
	DrivingBehavior DrivingBehavior    `bson:"driving_behavior" json:"driving_behavior"`
	IdempotencyKey  string             `bson:"idempotency_key,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// TripCompletion is the client-submitted payload that ends a trip.
type TripCompletion struct {
	EndLocation     Location        `json:"end_location"`
	Distance        float64         `json:"distance"`  // in kilometers
	Duration        float64         `json:"duration"`  // in minutes
	FuelUsed        float64         `json:"fuel_used"` // in liters
	MaxSpeed        float64         `json:"max_speed"` // in km/h
	DrivingBehavior DrivingBehavior `json:"driving_behavior"`
}

// TripCompletionUpdate carries everything written to the store when a trip
// completes. The store applies it in a single conditional update.
type TripCompletionUpdate struct {
	EndTime         time.Time
	EndLocation     Location
	Distance        float64
	Duration        float64
	FuelUsed        float64
	AverageSpeed    float64
	MaxSpeed        float64
	EcoScore        float64
	DrivingBehavior DrivingBehavior
}
