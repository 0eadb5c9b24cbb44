package handlers

import (
	"fmt"

	"bosma/internal/middleware"
	"bosma/internal/models"
	"bosma/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orders   *services.OrderService
	checkout *services.CheckoutService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, checkout *services.CheckoutService, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		checkout: checkout,
		validate: validate,
	}
}

// RegisterRoutes registers the order routes with the Fiber app. Everything
// except the caller's own orders requires ADMIN.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/my", h.HandleGetMyOrders)
	orderRoutes.Get("/", adminOnly, h.HandleGetOrders)
	orderRoutes.Post("/", adminOnly, h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/print", adminOnly, h.HandleGetPrintDetails)
	orderRoutes.Patch("/:id", adminOnly, h.HandleUpdateOrder)
	orderRoutes.Patch("/:id/status", adminOnly, h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/payment-status", adminOnly, h.HandleUpdatePaymentStatus)
	orderRoutes.Delete("/:id", adminOnly, h.HandleDeleteOrder)
}

// HandleGetOrders lists orders with paging, filters and search.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var query services.OrderQuery
	if err := c.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters: "+err.Error())
	}

	page, err := h.orders.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.orders.FindUserOrders(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// HandleGetOrderByID returns an order to its owner or an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.UserContext(), middleware.CurrentActor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleGetPrintDetails(c *fiber.Ctx) error {
	order, err := h.orders.PrintDetails(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandleCreateOrder creates an order from caller-supplied lines and prices.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.ManualOrderInput
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	order, err := h.checkout.CreateOrder(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	var req services.OrderPatch
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	order, err := h.orders.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), c.Params("id"), models.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleUpdatePaymentStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	order, err := h.orders.UpdatePaymentStatus(c.UserContext(), c.Params("id"), models.PaymentStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if err := h.orders.Remove(c.UserContext(), orderID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order with ID %s has been deleted", orderID),
	})
}
