package service

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/vehicle-monitor/internal/db"
	"github.com/ukydev/vehicle-monitor/internal/models"
)

// VehicleService provides the dashboard's vehicle data access.
type VehicleService struct {
	vehicles db.VehicleCollection
	logger   *log.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicles db.VehicleCollection, logger *log.Logger) *VehicleService {
	return &VehicleService{vehicles: vehicles, logger: logger}
}

// Register adds a vehicle to the user's fleet.
func (s *VehicleService) Register(ctx context.Context, vehicle *models.Vehicle) (string, error) {
	if vehicle.UserID == "" {
		return "", ErrInvalidUserID
	}
	if !vehicle.CurrentLocation.Valid() {
		return "", ErrInvalidLocation
	}
	if vehicle.Status == "" {
		vehicle.Status = "active"
	}

	id, err := s.vehicles.InsertVehicle(ctx, vehicle)
	if err != nil {
		return "", err
	}

	s.logger.WithFields(log.Fields{
		"user_id":    vehicle.UserID,
		"vehicle_id": id.Hex(),
	}).Info("vehicle registered")

	return id.Hex(), nil
}

// List returns all of the user's vehicles.
func (s *VehicleService) List(ctx context.Context, userID string) ([]models.Vehicle, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.vehicles.FindVehicles(ctx, userID)
}

// Get returns one vehicle by ID.
func (s *VehicleService) Get(ctx context.Context, userID, vehicleID string) (*models.Vehicle, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	id, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, ErrInvalidVehicleID
	}
	return s.vehicles.FindVehicleByID(ctx, userID, id)
}

// UpdateStatus sets a vehicle's status.
func (s *VehicleService) UpdateStatus(ctx context.Context, userID, vehicleID, status string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	id, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return ErrInvalidVehicleID
	}
	return s.vehicles.UpdateVehicle(ctx, userID, id, map[string]interface{}{"status": status})
}
