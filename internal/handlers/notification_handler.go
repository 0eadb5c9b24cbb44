package handlers

import (
	"bosma/internal/middleware"
	"bosma/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler lists the notifications recorded from order events.
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notificationRoutes := router.Group("/notifications")
	notificationRoutes.Get("/", h.HandleList)
	notificationRoutes.Get("/unread-count", h.HandleUnreadCount)
	notificationRoutes.Patch("/:id/read", h.HandleMarkRead)
}

func (h *NotificationHandler) HandleList(c *fiber.Ctx) error {
	notifications, err := h.notifications.List(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(notifications)
}

func (h *NotificationHandler) HandleUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifications.UnreadCount(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"unread": count,
	})
}

func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkRead(c.UserContext(), middleware.CurrentActor(c).UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Notification marked as read",
	})
}
