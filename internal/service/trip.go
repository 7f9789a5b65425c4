package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/vehicle-monitor/internal/db"
	"github.com/ukydev/vehicle-monitor/internal/models"
)

// TripService owns the trip lifecycle for a vehicle: start, in-progress
// tracking, completion with a derived eco-score, and history queries. It
// performs no locking of its own; both lifecycle invariants are enforced by
// conditional writes at the store boundary.
type TripService struct {
	trips         db.TripCollection
	notifications db.NotificationCollection
	logger        *log.Logger
	now           func() time.Time
}

// NewTripService creates a new TripService. The clock is injectable for
// deterministic tests; nil means time.Now.
func NewTripService(trips db.TripCollection, notifications db.NotificationCollection, logger *log.Logger, clock func() time.Time) *TripService {
	if clock == nil {
		clock = time.Now
	}
	return &TripService{
		trips:         trips,
		notifications: notifications,
		logger:        logger,
		now:           clock,
	}
}

// StartTripRequest contains the parameters for starting a trip.
type StartTripRequest struct {
	UserID        string
	VehicleID     string
	StartLocation models.Location

	// IdempotencyKey is an optional client-generated token. Retrying a
	// start with the same key after an ambiguous failure returns the
	// already-created trip instead of a conflict.
	IdempotencyKey string
}

// Start creates a new in-progress trip for the vehicle and returns its ID.
// It fails with db.ErrActiveTripExists while another trip is in progress.
func (s *TripService) Start(ctx context.Context, req StartTripRequest) (string, error) {
	if req.UserID == "" {
		return "", ErrInvalidUserID
	}
	if req.VehicleID == "" {
		return "", ErrInvalidVehicleID
	}
	if !req.StartLocation.Valid() {
		return "", ErrInvalidLocation
	}

	trip := &models.Trip{
		UserID:         req.UserID,
		VehicleID:      req.VehicleID,
		StartTime:      s.now(),
		StartLocation:  req.StartLocation,
		IdempotencyKey: req.IdempotencyKey,
	}

	id, err := s.trips.InsertActive(ctx, trip)
	if err != nil {
		if errors.Is(err, db.ErrActiveTripExists) && req.IdempotencyKey != "" {
			// A retry of a start that already succeeded returns the
			// original trip rather than a conflict.
			active, findErr := s.trips.FindActive(ctx, req.UserID, req.VehicleID)
			if findErr == nil && active != nil && active.IdempotencyKey == req.IdempotencyKey {
				return active.ID.Hex(), nil
			}
		}
		return "", err
	}

	s.logger.WithFields(log.Fields{
		"user_id":    req.UserID,
		"vehicle_id": req.VehicleID,
		"trip_id":    id.Hex(),
	}).Info("trip started")

	return id.Hex(), nil
}

// EndTripRequest contains the parameters for ending a trip.
type EndTripRequest struct {
	UserID     string
	VehicleID  string
	TripID     string
	Completion models.TripCompletion
}

// End completes an in-progress trip: it validates the submitted metrics,
// derives the eco-score, and applies a single atomic completion update.
// A second completion of the same trip fails with db.ErrTripNotInProgress
// and leaves the stored record unchanged.
func (s *TripService) End(ctx context.Context, req EndTripRequest) error {
	if req.UserID == "" {
		return ErrInvalidUserID
	}
	if req.VehicleID == "" {
		return ErrInvalidVehicleID
	}
	tripID, err := primitive.ObjectIDFromHex(req.TripID)
	if err != nil {
		return ErrInvalidTripID
	}

	c := req.Completion
	if !c.EndLocation.Valid() {
		return ErrInvalidLocation
	}
	for _, v := range []float64{c.Distance, c.Duration, c.FuelUsed, c.MaxSpeed} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrInvalidMetrics
		}
	}
	if !c.DrivingBehavior.Valid() {
		return ErrInvalidBehavior
	}

	current, err := s.trips.FindByID(ctx, req.UserID, req.VehicleID, tripID)
	if err != nil {
		return err
	}

	// Counters accumulated by the event ingest never move backwards: a
	// client reporting fewer events than the server recorded loses.
	behavior := current.DrivingBehavior.Merge(c.DrivingBehavior)

	averageSpeed := 0.0
	if c.Duration > 0 {
		averageSpeed = c.Distance / (c.Duration / 60)
	}
	ecoScore := ComputeEcoScore(behavior, c.Distance, c.Duration)

	upd := models.TripCompletionUpdate{
		EndTime:         s.now(),
		EndLocation:     c.EndLocation,
		Distance:        c.Distance,
		Duration:        c.Duration,
		FuelUsed:        c.FuelUsed,
		AverageSpeed:    averageSpeed,
		MaxSpeed:        c.MaxSpeed,
		EcoScore:        ecoScore,
		DrivingBehavior: behavior,
	}

	if err := s.trips.Complete(ctx, req.UserID, req.VehicleID, tripID, upd); err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{
		"user_id":    req.UserID,
		"vehicle_id": req.VehicleID,
		"trip_id":    req.TripID,
		"eco_score":  ecoScore,
	}).Info("trip completed")

	// The trip is completed regardless of whether the notification lands.
	if s.notifications != nil {
		_, err := s.notifications.InsertNotification(ctx, &models.Notification{
			UserID:    req.UserID,
			VehicleID: req.VehicleID,
			Type:      "trip_completed",
			Title:     "Trip completed",
			Message:   fmt.Sprintf("Trip finished with an eco-score of %.0f (%.1f km, %.0f min)", ecoScore, c.Distance, c.Duration),
		})
		if err != nil {
			s.logger.WithError(err).Warn("failed to write trip completion notification")
		}
	}

	return nil
}

// List returns all trips for the vehicle ordered by start time descending.
// Every call re-reads current store state.
func (s *TripService) List(ctx context.Context, userID, vehicleID string) ([]models.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	return s.trips.FindAll(ctx, userID, vehicleID)
}

// Active returns the vehicle's in-progress trip, or nil when there is none.
func (s *TripService) Active(ctx context.Context, userID, vehicleID string) (*models.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	return s.trips.FindActive(ctx, userID, vehicleID)
}

// Get returns one trip by ID, scoped to the user and vehicle.
func (s *TripService) Get(ctx context.Context, userID, vehicleID, tripID string) (*models.Trip, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	id, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return nil, ErrInvalidTripID
	}
	return s.trips.FindByID(ctx, userID, vehicleID, id)
}
