package service

import (
	"context"
	"math"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/vehicle-monitor/internal/db"
	"github.com/ukydev/vehicle-monitor/internal/models"
)

// newTestService builds a TripService over the in-memory fakes with a
// deterministic advancing clock. A nil notifications argument leaves the
// service without a notification sink.
func newTestService(store *fakeTripStore, notifications db.NotificationCollection) *TripService {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)

	clock := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return NewTripService(store, notifications, logger, func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})
}

func TestTripService_Lifecycle(t *testing.T) {
	store := newFakeTripStore()
	notifications := &fakeNotificationStore{}
	svc := newTestService(store, notifications)
	ctx := context.Background()

	// Start a trip.
	tripID, err := svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 40.0, Lon: -73.9},
	})
	require.NoError(t, err)
	require.NotEmpty(t, tripID)

	// A second start for the same vehicle conflicts and creates nothing.
	_, err = svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 41.0, Lon: -74.0},
	})
	assert.ErrorIs(t, err, db.ErrActiveTripExists)

	trips, err := svc.List(ctx, "u1", "v1")
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, models.TripStatusInProgress, trips[0].Status)
	assert.Nil(t, trips[0].EcoScore)

	// Complete with a clean driving record.
	err = svc.End(ctx, EndTripRequest{
		UserID:    "u1",
		VehicleID: "v1",
		TripID:    tripID,
		Completion: models.TripCompletion{
			EndLocation: models.Location{Lat: 40.1, Lon: -73.8},
			Distance:    10,
			Duration:    20,
			FuelUsed:    1,
			MaxSpeed:    65,
		},
	})
	require.NoError(t, err)

	trips, err = svc.List(ctx, "u1", "v1")
	require.NoError(t, err)
	require.Len(t, trips, 1)

	completed := trips[0]
	assert.Equal(t, models.TripStatusCompleted, completed.Status)
	require.NotNil(t, completed.EcoScore)
	assert.Equal(t, 100.0, *completed.EcoScore)
	require.NotNil(t, completed.EndTime)
	assert.True(t, completed.EndTime.After(completed.StartTime))
	require.NotNil(t, completed.AverageSpeed)
	assert.InDelta(t, 30.0, *completed.AverageSpeed, 0.001) // 10 km in 20 min

	// Completing again fails and leaves the record unchanged.
	err = svc.End(ctx, EndTripRequest{
		UserID:    "u1",
		VehicleID: "v1",
		TripID:    tripID,
		Completion: models.TripCompletion{
			EndLocation: models.Location{Lat: 0, Lon: 0},
			Distance:    999,
			Duration:    999,
			DrivingBehavior: models.DrivingBehavior{
				HarshBraking: 50,
			},
		},
	})
	assert.ErrorIs(t, err, db.ErrTripNotInProgress)

	after, err := svc.Get(ctx, "u1", "v1", tripID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, *after.Distance)
	assert.Equal(t, 100.0, *after.EcoScore)
	assert.Equal(t, 0, after.DrivingBehavior.HarshBraking)

	// The vehicle is free for a new trip now.
	_, err = svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 40.1, Lon: -73.8},
	})
	assert.NoError(t, err)
}

func TestTripService_EndWithBehaviorLowersScore(t *testing.T) {
	store := newFakeTripStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	tripID, err := svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 40.0, Lon: -73.9},
	})
	require.NoError(t, err)

	behavior := models.DrivingBehavior{HarshBraking: 4, RapidAcceleration: 2, Speeding: 6}
	err = svc.End(ctx, EndTripRequest{
		UserID:    "u1",
		VehicleID: "v1",
		TripID:    tripID,
		Completion: models.TripCompletion{
			EndLocation:     models.Location{Lat: 40.2, Lon: -73.7},
			Distance:        15,
			Duration:        35,
			FuelUsed:        1.4,
			MaxSpeed:        110,
			DrivingBehavior: behavior,
		},
	})
	require.NoError(t, err)

	trip, err := svc.Get(ctx, "u1", "v1", tripID)
	require.NoError(t, err)
	require.NotNil(t, trip.EcoScore)
	assert.Less(t, *trip.EcoScore, 100.0)
	assert.GreaterOrEqual(t, *trip.EcoScore, 0.0)
	assert.Equal(t, ComputeEcoScore(behavior, 15, 35), *trip.EcoScore)
	assert.Equal(t, behavior, trip.DrivingBehavior)
}

func TestTripService_EndKeepsIngestedBehavior(t *testing.T) {
	store := newFakeTripStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	tripID, err := svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 40.0, Lon: -73.9},
	})
	require.NoError(t, err)

	// Events recorded server-side while the trip was in progress.
	for i := 0; i < 3; i++ {
		require.NoError(t, store.IncrementBehavior(ctx, "u1", "v1", "harsh_braking"))
	}

	// A client reporting a clean record cannot erase them.
	err = svc.End(ctx, EndTripRequest{
		UserID:    "u1",
		VehicleID: "v1",
		TripID:    tripID,
		Completion: models.TripCompletion{
			EndLocation: models.Location{Lat: 40.1, Lon: -73.8},
			Distance:    10,
			Duration:    20,
		},
	})
	require.NoError(t, err)

	trip, err := svc.Get(ctx, "u1", "v1", tripID)
	require.NoError(t, err)
	assert.Equal(t, 3, trip.DrivingBehavior.HarshBraking)
	require.NotNil(t, trip.EcoScore)
	assert.Less(t, *trip.EcoScore, 100.0)
	assert.Equal(t, ComputeEcoScore(models.DrivingBehavior{HarshBraking: 3}, 10, 20), *trip.EcoScore)

	// A client that saw more events than the server keeps the higher count.
	tripID, err = svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 40.1, Lon: -73.8},
	})
	require.NoError(t, err)
	require.NoError(t, store.IncrementBehavior(ctx, "u1", "v1", "speeding"))

	err = svc.End(ctx, EndTripRequest{
		UserID:    "u1",
		VehicleID: "v1",
		TripID:    tripID,
		Completion: models.TripCompletion{
			EndLocation:     models.Location{Lat: 40.2, Lon: -73.7},
			Distance:        10,
			Duration:        20,
			DrivingBehavior: models.DrivingBehavior{Speeding: 4},
		},
	})
	require.NoError(t, err)

	trip, err = svc.Get(ctx, "u1", "v1", tripID)
	require.NoError(t, err)
	assert.Equal(t, 4, trip.DrivingBehavior.Speeding)
}

func TestTripService_StartValidation(t *testing.T) {
	svc := newTestService(newFakeTripStore(), nil)
	ctx := context.Background()

	_, err := svc.Start(ctx, StartTripRequest{VehicleID: "v1", StartLocation: models.Location{Lat: 1, Lon: 1}})
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = svc.Start(ctx, StartTripRequest{UserID: "u1", StartLocation: models.Location{Lat: 1, Lon: 1}})
	assert.ErrorIs(t, err, ErrInvalidVehicleID)

	_, err = svc.Start(ctx, StartTripRequest{UserID: "u1", VehicleID: "v1", StartLocation: models.Location{Lat: 91, Lon: 0}})
	assert.ErrorIs(t, err, ErrInvalidLocation)

	_, err = svc.Start(ctx, StartTripRequest{UserID: "u1", VehicleID: "v1", StartLocation: models.Location{Lat: math.NaN(), Lon: 0}})
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestTripService_EndValidation(t *testing.T) {
	store := newFakeTripStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	tripID, err := svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 40.0, Lon: -73.9},
	})
	require.NoError(t, err)

	valid := models.TripCompletion{
		EndLocation: models.Location{Lat: 40.1, Lon: -73.8},
		Distance:    5,
		Duration:    10,
		FuelUsed:    0.5,
		MaxSpeed:    50,
	}

	cases := []struct {
		name   string
		mutate func(*models.TripCompletion)
		want   error
	}{
		{"negative distance", func(c *models.TripCompletion) { c.Distance = -1 }, ErrInvalidMetrics},
		{"nan duration", func(c *models.TripCompletion) { c.Duration = math.NaN() }, ErrInvalidMetrics},
		{"infinite fuel", func(c *models.TripCompletion) { c.FuelUsed = math.Inf(1) }, ErrInvalidMetrics},
		{"negative max speed", func(c *models.TripCompletion) { c.MaxSpeed = -3 }, ErrInvalidMetrics},
		{"bad end location", func(c *models.TripCompletion) { c.EndLocation.Lon = 181 }, ErrInvalidLocation},
		{"negative counter", func(c *models.TripCompletion) { c.DrivingBehavior.Speeding = -1 }, ErrInvalidBehavior},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			completion := valid
			tc.mutate(&completion)
			err := svc.End(ctx, EndTripRequest{UserID: "u1", VehicleID: "v1", TripID: tripID, Completion: completion})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Validation failures never touched the store.
	trip, err := svc.Get(ctx, "u1", "v1", tripID)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusInProgress, trip.Status)
}

func TestTripService_EndUnknownTrip(t *testing.T) {
	svc := newTestService(newFakeTripStore(), nil)

	err := svc.End(context.Background(), EndTripRequest{
		UserID:    "u1",
		VehicleID: "v1",
		TripID:    "64b000000000000000000000",
		Completion: models.TripCompletion{
			EndLocation: models.Location{Lat: 1, Lon: 1},
		},
	})
	assert.ErrorIs(t, err, db.ErrTripNotFound)

	err = svc.End(context.Background(), EndTripRequest{UserID: "u1", VehicleID: "v1", TripID: "not-an-id"})
	assert.ErrorIs(t, err, ErrInvalidTripID)
}

func TestTripService_IdempotentStart(t *testing.T) {
	store := newFakeTripStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	first, err := svc.Start(ctx, StartTripRequest{
		UserID:         "u1",
		VehicleID:      "v1",
		StartLocation:  models.Location{Lat: 40.0, Lon: -73.9},
		IdempotencyKey: "key-123",
	})
	require.NoError(t, err)

	// Retrying with the same key returns the original trip.
	retry, err := svc.Start(ctx, StartTripRequest{
		UserID:         "u1",
		VehicleID:      "v1",
		StartLocation:  models.Location{Lat: 40.0, Lon: -73.9},
		IdempotencyKey: "key-123",
	})
	require.NoError(t, err)
	assert.Equal(t, first, retry)

	trips, err := svc.List(ctx, "u1", "v1")
	require.NoError(t, err)
	assert.Len(t, trips, 1)

	// A different key is a real conflict.
	_, err = svc.Start(ctx, StartTripRequest{
		UserID:         "u1",
		VehicleID:      "v1",
		StartLocation:  models.Location{Lat: 40.0, Lon: -73.9},
		IdempotencyKey: "key-456",
	})
	assert.ErrorIs(t, err, db.ErrActiveTripExists)
}

func TestTripService_ListOrdering(t *testing.T) {
	store := newFakeTripStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := svc.Start(ctx, StartTripRequest{
			UserID:        "u1",
			VehicleID:     "v1",
			StartLocation: models.Location{Lat: 40.0, Lon: -73.9},
		})
		require.NoError(t, err)

		err = svc.End(ctx, EndTripRequest{
			UserID:    "u1",
			VehicleID: "v1",
			TripID:    id,
			Completion: models.TripCompletion{
				EndLocation: models.Location{Lat: 40.1, Lon: -73.8},
				Distance:    5,
				Duration:    10,
			},
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	trips, err := svc.List(ctx, "u1", "v1")
	require.NoError(t, err)
	require.Len(t, trips, 3)

	// Most recent first.
	assert.Equal(t, ids[2], trips[0].ID.Hex())
	assert.Equal(t, ids[1], trips[1].ID.Hex())
	assert.Equal(t, ids[0], trips[2].ID.Hex())
	assert.True(t, trips[0].StartTime.After(trips[1].StartTime))
}

func TestTripService_CompletionNotification(t *testing.T) {
	store := newFakeTripStore()
	notifications := &fakeNotificationStore{}
	svc := newTestService(store, notifications)
	ctx := context.Background()

	tripID, err := svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 40.0, Lon: -73.9},
	})
	require.NoError(t, err)

	err = svc.End(ctx, EndTripRequest{
		UserID:    "u1",
		VehicleID: "v1",
		TripID:    tripID,
		Completion: models.TripCompletion{
			EndLocation: models.Location{Lat: 40.1, Lon: -73.8},
			Distance:    8,
			Duration:    15,
		},
	})
	require.NoError(t, err)

	list, err := notifications.FindNotifications(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "trip_completed", list[0].Type)
	assert.Equal(t, "v1", list[0].VehicleID)
}

func TestTripService_Active(t *testing.T) {
	store := newFakeTripStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	active, err := svc.Active(ctx, "u1", "v1")
	require.NoError(t, err)
	assert.Nil(t, active)

	tripID, err := svc.Start(ctx, StartTripRequest{
		UserID:        "u1",
		VehicleID:     "v1",
		StartLocation: models.Location{Lat: 40.0, Lon: -73.9},
	})
	require.NoError(t, err)

	active, err = svc.Active(ctx, "u1", "v1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, tripID, active.ID.Hex())
	assert.Equal(t, models.TripStatusInProgress, active.Status)
}
