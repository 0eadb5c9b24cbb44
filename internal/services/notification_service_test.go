package services_test

import (
	"context"
	"errors"
	"testing"

	"bosma/internal/apperr"
	"bosma/internal/models"
	"bosma/internal/repositories"
	"bosma/internal/services"
	"bosma/internal/testutil"
	"bosma/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService_HandleOrderEvent(t *testing.T) {
	db := testutil.NewDB(t)
	service := services.NewNotificationService(repositories.NewGORMNotificationRepository(db), zap.NewNop())
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.RoleUser)

	err := service.HandleOrderEvent(ctx, rabbitmq.OrderEvent{
		Type:    rabbitmq.EventOrderCreated,
		OrderID: "o-1",
		UserID:  user.ID,
		Status:  "PENDING",
		Total:   "2500.00",
	})
	require.NoError(t, err)

	require.NoError(t, service.HandleOrderEvent(ctx, rabbitmq.OrderEvent{Type: "order.archived", OrderID: "o-1", UserID: user.ID}))

	notifications, err := service.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeOrder, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "o-1")
	assert.Contains(t, notifications[0].Message, "2500.00")
	assert.False(t, notifications[0].IsRead)
}

func TestNotificationService_MarkRead(t *testing.T) {
	db := testutil.NewDB(t)
	service := services.NewNotificationService(repositories.NewGORMNotificationRepository(db), zap.NewNop())
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.RoleUser)
	other := testutil.CreateUser(t, db, models.RoleUser)

	for _, orderID := range []string{"o-1", "o-2"} {
		require.NoError(t, service.HandleOrderEvent(ctx, rabbitmq.OrderEvent{
			Type:    rabbitmq.EventOrderCreated,
			OrderID: orderID,
			UserID:  user.ID,
			Total:   "10.00",
		}))
	}

	unread, err := service.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	notifications, err := service.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)

	err = service.MarkRead(ctx, other.ID, notifications[0].ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "another user's notification is not visible")

	require.NoError(t, service.MarkRead(ctx, user.ID, notifications[0].ID))
	require.NoError(t, service.MarkRead(ctx, user.ID, notifications[0].ID), "marking twice is harmless")

	unread, err = service.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
