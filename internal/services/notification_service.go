package services

import (
	"context"
	"fmt"

	"bosma/internal/models"
	"bosma/internal/repositories"
	"bosma/pkg/rabbitmq"

	"go.uber.org/zap"
)

// NotificationService turns order events into user notifications.
type NotificationService struct {
	notifications repositories.NotificationRepository
	logger        *zap.Logger
}

func NewNotificationService(notifications repositories.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// HandleOrderEvent stores a notification for the owner of the order. Unknown
// event types are ignored.
func (s *NotificationService) HandleOrderEvent(ctx context.Context, event rabbitmq.OrderEvent) error {
	if event.Type != "" && event.Type != rabbitmq.EventOrderCreated {
		s.logger.Debug("Ignoring order event", zap.String("type", event.Type))
		return nil
	}

	notification := &models.Notification{
		UserID:  event.UserID,
		Type:    models.NotificationTypeOrder,
		Message: fmt.Sprintf("Your order %s has been placed. Total: %s", event.OrderID, event.Total),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification for order %s: %w", event.OrderID, err)
	}
	s.logger.Info("Order notification stored", zap.String("order_id", event.OrderID), zap.String("user_id", event.UserID))
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifications.MarkRead(ctx, userID, id)
}
