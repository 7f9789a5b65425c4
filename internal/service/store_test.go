package service

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/vehicle-monitor/internal/db"
	"github.com/ukydev/vehicle-monitor/internal/models"
)

// fakeTripStore is an in-memory db.TripCollection with the same conditional
// write semantics as the Mongo implementation.
type fakeTripStore struct {
	mu     sync.Mutex
	trips  map[string]*models.Trip
	events chan db.TripChange
}

func newFakeTripStore() *fakeTripStore {
	return &fakeTripStore{
		trips:  make(map[string]*models.Trip),
		events: make(chan db.TripChange),
	}
}

func (f *fakeTripStore) InsertActive(_ context.Context, trip *models.Trip) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.trips {
		if t.UserID == trip.UserID && t.VehicleID == trip.VehicleID && t.Status == models.TripStatusInProgress {
			return primitive.NilObjectID, db.ErrActiveTripExists
		}
	}

	trip.ID = primitive.NewObjectID()
	trip.Status = models.TripStatusInProgress
	stored := *trip
	f.trips[trip.ID.Hex()] = &stored
	return trip.ID, nil
}

func (f *fakeTripStore) FindActive(_ context.Context, userID, vehicleID string) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.trips {
		if t.UserID == userID && t.VehicleID == vehicleID && t.Status == models.TripStatusInProgress {
			trip := *t
			return &trip, nil
		}
	}
	return nil, nil
}

func (f *fakeTripStore) FindByID(_ context.Context, userID, vehicleID string, id primitive.ObjectID) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.trips[id.Hex()]
	if !ok || t.UserID != userID || t.VehicleID != vehicleID {
		return nil, db.ErrTripNotFound
	}
	trip := *t
	return &trip, nil
}

func (f *fakeTripStore) Complete(_ context.Context, userID, vehicleID string, id primitive.ObjectID, upd models.TripCompletionUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.trips[id.Hex()]
	if !ok || t.UserID != userID || t.VehicleID != vehicleID {
		return db.ErrTripNotFound
	}
	if t.Status != models.TripStatusInProgress {
		return db.ErrTripNotInProgress
	}

	t.Status = models.TripStatusCompleted
	t.EndTime = &upd.EndTime
	t.EndLocation = &upd.EndLocation
	t.Distance = &upd.Distance
	t.Duration = &upd.Duration
	t.FuelUsed = &upd.FuelUsed
	t.AverageSpeed = &upd.AverageSpeed
	t.MaxSpeed = &upd.MaxSpeed
	t.EcoScore = &upd.EcoScore
	t.DrivingBehavior = t.DrivingBehavior.Merge(upd.DrivingBehavior)
	return nil
}

func (f *fakeTripStore) IncrementBehavior(_ context.Context, userID, vehicleID, counter string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.trips {
		if t.UserID != userID || t.VehicleID != vehicleID || t.Status != models.TripStatusInProgress {
			continue
		}
		switch counter {
		case "harsh_braking":
			t.DrivingBehavior.HarshBraking++
		case "rapid_acceleration":
			t.DrivingBehavior.RapidAcceleration++
		case "sharp_cornering":
			t.DrivingBehavior.SharpCornering++
		case "speeding":
			t.DrivingBehavior.Speeding++
		}
		return nil
	}
	return db.ErrTripNotFound
}

func (f *fakeTripStore) FindAll(_ context.Context, userID, vehicleID string) ([]models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var trips []models.Trip
	for _, t := range f.trips {
		if t.UserID == userID && t.VehicleID == vehicleID {
			trips = append(trips, *t)
		}
	}
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].StartTime.After(trips[j].StartTime)
	})
	return trips, nil
}

func (f *fakeTripStore) WatchActive(_ context.Context, _, _ string) (<-chan db.TripChange, error) {
	return f.events, nil
}

// fakeNotificationStore records inserted notifications.
type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (f *fakeNotificationStore) InsertNotification(_ context.Context, n *models.Notification) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = primitive.NewObjectID()
	f.notifications = append(f.notifications, *n)
	return n.ID, nil
}

func (f *fakeNotificationStore) FindNotifications(_ context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userID string, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].Read = true
			return nil
		}
	}
	return db.ErrNotificationNotFound
}
