package handlers

import (
	"bosma/internal/apperr"
	"bosma/internal/metrics"
	"bosma/internal/middleware"
	"bosma/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart and checkout.
type CartHandler struct {
	cart     *services.CartService
	checkout *services.CheckoutService
	metrics  *metrics.ServerMetrics
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler. m may be nil.
func NewCartHandler(cart *services.CartService, checkout *services.CheckoutService, m *metrics.ServerMetrics, validate *validator.Validate) *CartHandler {
	return &CartHandler{
		cart:     cart,
		checkout: checkout,
		metrics:  m,
		validate: validate,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddItem)
	cartRoutes.Patch("/item/:id", h.HandleUpdateItem)
	cartRoutes.Delete("/item/:id", h.HandleRemoveItem)
	cartRoutes.Delete("/clear", h.HandleClearCart)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

// HandleGetCart returns the caller's cart, creating it on first use.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.cart.GetOrCreateCart(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req services.AddItemInput
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	item, err := h.cart.AddItem(c.UserContext(), middleware.CurrentActor(c).UserID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req services.UpdateItemInput
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	item, err := h.cart.UpdateItem(c.UserContext(), middleware.CurrentActor(c).UserID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.cart.RemoveItem(c.UserContext(), middleware.CurrentActor(c).UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Item deleted successfully",
	})
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	removed, err := h.cart.ClearCart(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared",
		"removed": removed,
	})
}

// HandleCheckout converts the caller's cart into an order.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.ShippingDetails
	if err := parseBody(c, h.validate, &req); err != nil {
		h.recordRejected()
		return err
	}

	order, err := h.checkout.ConvertCartToOrder(c.UserContext(), middleware.CurrentActor(c).UserID, req)
	h.recordCheckout(err)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *CartHandler) recordRejected() {
	if h.metrics != nil {
		h.metrics.RecordCheckout(metrics.CheckoutRejected)
	}
}

func (h *CartHandler) recordCheckout(err error) {
	if h.metrics == nil {
		return
	}
	switch {
	case err == nil:
		h.metrics.RecordCheckout(metrics.CheckoutSucceeded)
	case apperr.KindOf(err) == apperr.KindInvalidInput:
		h.metrics.RecordCheckout(metrics.CheckoutRejected)
	default:
		h.metrics.RecordCheckout(metrics.CheckoutFailed)
	}
}
