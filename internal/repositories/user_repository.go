package repositories

import (
	"context"

	"bosma/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	FindByRole(ctx context.Context, role models.Role) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
}
