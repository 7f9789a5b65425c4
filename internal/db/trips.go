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

// MongoTripCollection wraps a MongoDB collection for trip operations.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// InsertActive creates a new in-progress trip record. The partial unique
// index on (user_id, vehicle_id, status=in_progress) rejects a second
// active trip for the same vehicle, so two concurrent starts cannot both
// succeed.
func (c *MongoTripCollection) InsertActive(ctx context.Context, trip *models.Trip) (primitive.ObjectID, error) {
	trip.ID = primitive.NewObjectID()
	trip.Status = models.TripStatusInProgress
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt

	_, err := c.Collection.InsertOne(ctx, trip)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrActiveTripExists
		}
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return trip.ID, nil
}

// FindActive returns the in-progress trip for the vehicle, or nil when none exists.
func (c *MongoTripCollection) FindActive(ctx context.Context, userID, vehicleID string) (*models.Trip, error) {
	filter := bson.M{
		"user_id":    userID,
		"vehicle_id": vehicleID,
		"status":     models.TripStatusInProgress,
	}

	var trip models.Trip
	err := c.Collection.FindOne(ctx, filter).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &trip, nil
}

// FindByID finds a trip by its ID, scoped to the owning user and vehicle.
func (c *MongoTripCollection) FindByID(ctx context.Context, userID, vehicleID string, id primitive.ObjectID) (*models.Trip, error) {
	filter := bson.M{"_id": id, "user_id": userID, "vehicle_id": vehicleID}

	var trip models.Trip
	err := c.Collection.FindOne(ctx, filter).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &trip, nil
}

// Complete marks a trip completed and attaches all completion fields in one
// conditional update guarded by status=in_progress. Two concurrent
// completions cannot both match the guard; the loser gets
// ErrTripNotInProgress.
func (c *MongoTripCollection) Complete(ctx context.Context, userID, vehicleID string, id primitive.ObjectID, upd models.TripCompletionUpdate) error {
	filter := bson.M{
		"_id":        id,
		"user_id":    userID,
		"vehicle_id": vehicleID,
		"status":     models.TripStatusInProgress,
	}
	update := bson.M{
		"$set": bson.M{
			"status":        models.TripStatusCompleted,
			"end_time":      upd.EndTime,
			"end_location":  upd.EndLocation,
			"distance":      upd.Distance,
			"duration":      upd.Duration,
			"fuel_used":     upd.FuelUsed,
			"average_speed": upd.AverageSpeed,
			"max_speed":     upd.MaxSpeed,
			"eco_score":     upd.EcoScore,
			"updated_at":    time.Now(),
		},
		// The ingest may have incremented a counter after the caller read
		// the trip; $max keeps accumulated counts from moving backwards.
		"$max": bson.M{
			"driving_behavior.harsh_braking":      upd.DrivingBehavior.HarshBraking,
			"driving_behavior.rapid_acceleration": upd.DrivingBehavior.RapidAcceleration,
			"driving_behavior.sharp_cornering":    upd.DrivingBehavior.SharpCornering,
			"driving_behavior.speeding":           upd.DrivingBehavior.Speeding,
		},
	}

	result, err := c.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing trip from one that is already completed.
		err := c.Collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID, "vehicle_id": vehicleID}).Err()
		if err == mongo.ErrNoDocuments {
			return ErrTripNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return ErrTripNotInProgress
	}
	return nil
}

// IncrementBehavior adds one event to a driving-behavior counter of the
// vehicle's in-progress trip. The status guard keeps completed trips immutable.
func (c *MongoTripCollection) IncrementBehavior(ctx context.Context, userID, vehicleID, counter string) error {
	filter := bson.M{
		"user_id":    userID,
		"vehicle_id": vehicleID,
		"status":     models.TripStatusInProgress,
	}
	update := bson.M{
		"$inc": bson.M{"driving_behavior." + counter: 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := c.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if result.MatchedCount == 0 {
		return ErrTripNotFound
	}
	return nil
}

// FindAll returns all trips for the vehicle ordered by start time descending.
func (c *MongoTripCollection) FindAll(ctx context.Context, userID, vehicleID string) ([]models.Trip, error) {
	filter := bson.M{"user_id": userID, "vehicle_id": vehicleID}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})

	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return trips, nil
}

// WatchActive opens a change stream restricted to the vehicle's trips and
// forwards the active-trip view on every change: the full document while a
// trip is in progress, nil once a change leaves the vehicle without one.
// The channel closes when ctx is cancelled; a change-stream failure is
// delivered as a final error event before the close.
func (c *MongoTripCollection) WatchActive(ctx context.Context, userID, vehicleID string) (<-chan TripChange, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "fullDocument.user_id", Value: userID},
			{Key: "fullDocument.vehicle_id", Value: vehicleID},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := c.Collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	events := make(chan TripChange)
	go func() {
		defer close(events)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var change struct {
				FullDocument *models.Trip `bson:"fullDocument"`
			}
			if err := stream.Decode(&change); err != nil {
				continue
			}

			trip := change.FullDocument
			if trip != nil && trip.Status != models.TripStatusInProgress {
				trip = nil
			}

			select {
			case events <- TripChange{Trip: trip}:
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			select {
			case events <- TripChange{Err: fmt.Errorf("%w: %v", ErrStoreUnavailable, err)}:
			case <-ctx.Done():
			}
		}
	}()
	return events, nil
}
