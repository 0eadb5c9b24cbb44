package services

import (
	"bosma/internal/models"
	"bosma/pkg/rabbitmq"

	"go.uber.org/zap"
)

// OrderEventPublisher delivers order lifecycle events to the broker.
// *rabbitmq.Client implements it.
type OrderEventPublisher interface {
	PublishOrderCreated(event rabbitmq.OrderEvent) error
}

// publishOrderCreated is best effort: the order is already committed, so a
// failure is only logged.
func publishOrderCreated(publisher OrderEventPublisher, logger *zap.Logger, order *models.Order) {
	if publisher == nil {
		logger.Debug("No event publisher configured, skipping order.created", zap.String("order_id", order.ID))
		return
	}

	event := rabbitmq.OrderEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		Total:   order.TotalPrice.StringFixed(2),
	}
	if err := publisher.PublishOrderCreated(event); err != nil {
		logger.Warn("Failed to publish order.created",
			zap.String("order_id", order.ID),
			zap.String("user_id", order.UserID),
			zap.Error(err),
		)
	}
}
