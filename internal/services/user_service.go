package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bosma/internal/apperr"
	"bosma/internal/guard"
	"bosma/internal/models"
	"bosma/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SuperAdminSeed holds the credentials of the super admin created on first start.
type SuperAdminSeed struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// UserService manages roles and the super admin account.
type UserService struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// SeedSuperAdmin creates the super admin unless one already exists. It
// reports whether a user was created.
func (s *UserService) SeedSuperAdmin(ctx context.Context, seed SuperAdminSeed) (bool, error) {
	_, err := s.users.FindByRole(ctx, models.RoleSuperAdmin)
	if err == nil {
		s.logger.Info("Super admin already exists")
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	fullName := seed.FullName
	if fullName == "" {
		fullName = "Super Admin"
	}
	user := &models.User{
		FullName: fullName,
		Email:    strings.ToLower(strings.TrimSpace(seed.Email)),
		Phone:    seed.Phone,
		Password: string(hashedPassword),
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create super admin: %w", err)
	}

	s.logger.Info("Super admin created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return true, nil
}

// PromoteUser assigns newRole to the target user. Only the super admin may do
// this; the super admin's own role can never change and SUPER_ADMIN can never be
// assigned.
func (s *UserService) PromoteUser(ctx context.Context, requester models.Actor, targetID string, newRole models.Role) (*models.User, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleSuperAdmin {
		return nil, apperr.PermissionDenied("Cannot change the role of the existing SUPER_ADMIN user.")
	}

	caller, err := s.users.GetByID(ctx, requester.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Requesting user with ID %s not found", requester.UserID)
		}
		return nil, err
	}
	if err := guard.AssertSuperAdmin(caller.Role); err != nil {
		return nil, err
	}
	if caller.ID == target.ID {
		return nil, apperr.PermissionDenied("SUPER_ADMIN cannot demote themselves.")
	}
	if newRole == models.RoleSuperAdmin {
		return nil, apperr.PermissionDenied("The SUPER_ADMIN role is unique and cannot be assigned.")
	}
	if err := guard.ValidRole(newRole); err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(ctx, target.ID, newRole); err != nil {
		return nil, err
	}
	s.logger.Info("User role changed",
		zap.String("user_id", target.ID),
		zap.String("from", string(target.Role)),
		zap.String("to", string(newRole)),
		zap.String("by", caller.ID),
	)
	target.Role = newRole
	return target, nil
}
