package service

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/vehicle-monitor/internal/db"
	"github.com/ukydev/vehicle-monitor/internal/models"
)

// NotificationService provides the dashboard's notification data access.
type NotificationService struct {
	notifications db.NotificationCollection
	logger        *log.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications db.NotificationCollection, logger *log.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.notifications.FindNotifications(ctx, userID, unreadOnly)
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return db.ErrNotificationNotFound
	}
	return s.notifications.MarkRead(ctx, userID, id)
}
