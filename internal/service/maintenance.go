package service

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-monitor/internal/db"
	"github.com/ukydev/vehicle-monitor/internal/models"
)

// ErrInvalidServiceType is returned when a maintenance record has no service type.
var ErrInvalidServiceType = errors.New("invalid service type")

// MaintenanceService provides the dashboard's maintenance data access.
type MaintenanceService struct {
	maintenance   db.MaintenanceCollection
	notifications db.NotificationCollection
	logger        *log.Logger
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(maintenance db.MaintenanceCollection, notifications db.NotificationCollection, logger *log.Logger) *MaintenanceService {
	return &MaintenanceService{maintenance: maintenance, notifications: notifications, logger: logger}
}

// Schedule records a maintenance entry for a vehicle and raises a
// maintenance-due notification.
func (s *MaintenanceService) Schedule(ctx context.Context, record *models.Maintenance) (string, error) {
	if record.UserID == "" {
		return "", ErrInvalidUserID
	}
	if record.VehicleID == "" {
		return "", ErrInvalidVehicleID
	}
	if record.ServiceType == "" {
		return "", ErrInvalidServiceType
	}
	if record.Status == "" {
		record.Status = "scheduled"
	}

	id, err := s.maintenance.InsertMaintenance(ctx, record)
	if err != nil {
		return "", err
	}

	if s.notifications != nil {
		_, err := s.notifications.InsertNotification(ctx, &models.Notification{
			UserID:    record.UserID,
			VehicleID: record.VehicleID,
			Type:      "maintenance_due",
			Title:     "Maintenance scheduled",
			Message:   record.ServiceType + " scheduled for " + record.ServiceDate.Format("2006-01-02"),
		})
		if err != nil {
			s.logger.WithError(err).Warn("failed to write maintenance notification")
		}
	}

	return id.Hex(), nil
}

// List returns the user's maintenance records, optionally filtered by vehicle.
func (s *MaintenanceService) List(ctx context.Context, userID, vehicleID string) ([]models.Maintenance, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.maintenance.FindMaintenance(ctx, userID, vehicleID)
}
