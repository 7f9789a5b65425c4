package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/vehicle-monitor/internal/models"
)

// TripCollection defines the interface for trip data operations.
type TripCollection interface {
	// InsertActive creates a new in-progress trip. It fails with
	// ErrActiveTripExists if the vehicle already has one.
	InsertActive(ctx context.Context, trip *models.Trip) (primitive.ObjectID, error)

	// FindActive returns the vehicle's in-progress trip, or nil when there is none.
	FindActive(ctx context.Context, userID, vehicleID string) (*models.Trip, error)

	// FindByID returns the trip with the given ID scoped to the user and vehicle.
	FindByID(ctx context.Context, userID, vehicleID string, id primitive.ObjectID) (*models.Trip, error)

	// Complete applies the completion update in a single conditional write
	// guarded by status=in_progress. It fails with ErrTripNotFound or
	// ErrTripNotInProgress and never partially updates the trip. Behavior
	// counters are merged per field, never lowered.
	Complete(ctx context.Context, userID, vehicleID string, id primitive.ObjectID, upd models.TripCompletionUpdate) error

	// IncrementBehavior adds to one driving-behavior counter of the
	// vehicle's in-progress trip. Completed trips are never touched.
	IncrementBehavior(ctx context.Context, userID, vehicleID, counter string) error

	// FindAll returns all trips for the vehicle, most recent first.
	FindAll(ctx context.Context, userID, vehicleID string) ([]models.Trip, error)

	// WatchActive subscribes to changes of the vehicle's trips. The channel
	// closes when ctx is cancelled; if the underlying feed fails, the final
	// event before the close carries the error.
	WatchActive(ctx context.Context, userID, vehicleID string) (<-chan TripChange, error)
}

// TripChange is one event on a vehicle's active-trip watch. Trip is the
// current in-progress trip, or nil when a change left the vehicle with no
// active trip. Err is only set on the final event when the feed fails.
type TripChange struct {
	Trip *models.Trip
	Err  error
}

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) (primitive.ObjectID, error)
	FindVehicles(ctx context.Context, userID string) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, userID string, id primitive.ObjectID, updates map[string]interface{}) error
}

// MaintenanceCollection defines the interface for maintenance data operations.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, record *models.Maintenance) (primitive.ObjectID, error)
	FindMaintenance(ctx context.Context, userID, vehicleID string) ([]models.Maintenance, error)
}

// NotificationCollection defines the interface for notification data operations.
type NotificationCollection interface {
	InsertNotification(ctx context.Context, notification *models.Notification) (primitive.ObjectID, error)
	FindNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id primitive.ObjectID) error
}
