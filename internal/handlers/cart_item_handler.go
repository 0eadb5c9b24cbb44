package handlers

import (
	"bosma/internal/middleware"
	"bosma/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartItemHandler serves single cart items by id, including design edits.
type CartItemHandler struct {
	cart     *services.CartService
	validate *validator.Validate
}

func NewCartItemHandler(cart *services.CartService, validate *validator.Validate) *CartItemHandler {
	return &CartItemHandler{
		cart:     cart,
		validate: validate,
	}
}

func (h *CartItemHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/cart-items")
	itemRoutes.Get("/:id", h.HandleGetItem)
	itemRoutes.Patch("/:id", h.HandleUpdateItem)
}

func (h *CartItemHandler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.cart.GetItem(c.UserContext(), middleware.CurrentActor(c).UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *CartItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
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
