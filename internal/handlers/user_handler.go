package handlers

import (
	"bosma/internal/middleware"
	"bosma/internal/models"
	"bosma/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles role management.
type UserHandler struct {
	users    *services.UserService
	validate *validator.Validate
}

func NewUserHandler(users *services.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: validate,
	}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users", middleware.RequireRole(models.RoleSuperAdmin))
	userRoutes.Patch("/:id/role", h.HandlePromoteUser)
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

// HandlePromoteUser changes another user's role.
func (h *UserHandler) HandlePromoteUser(c *fiber.Ctx) error {
	var req roleRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.users.PromoteUser(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), models.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Role updated",
		"user":    user,
	})
}
