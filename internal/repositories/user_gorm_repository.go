package repositories

import (
	"context"
	"fmt"

	"bosma/internal/apperr"
	"bosma/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err, fmt.Sprintf("user with email %s", user.Email))
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user with email %s", email))
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user with ID %s", id))
	}
	return &user, nil
}

// FindByRole returns any one user holding role.
func (r *GORMUserRepository) FindByRole(ctx context.Context, role models.Role) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).First(&user).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user with role %s", role))
	}
	return &user, nil
}

// UpdateRole sets the role of an existing user.
func (r *GORMUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("user with ID %s", id))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user with ID %s not found", id)
	}
	return nil
}
