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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_SeedSuperAdminOnce(t *testing.T) {
	db := testutil.NewDB(t)
	users := repositories.NewGORMUserRepository(db)
	service := services.NewUserService(users, zap.NewNop())
	ctx := context.Background()

	created, err := service.SeedSuperAdmin(ctx, services.SuperAdminSeed{Email: "Root@Example.com", Password: "Admin123!"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = service.SeedSuperAdmin(ctx, services.SuperAdminSeed{Email: "other@example.com", Password: "x"})
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("Admin123!")))
}

func TestUserService_PromoteUser(t *testing.T) {
	db := testutil.NewDB(t)
	service := services.NewUserService(repositories.NewGORMUserRepository(db), zap.NewNop())
	ctx := context.Background()

	root := testutil.CreateUser(t, db, models.RoleSuperAdmin)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	user := testutil.CreateUser(t, db, models.RoleUser)
	rootActor := models.Actor{UserID: root.ID, Role: root.Role}

	promoted, err := service.PromoteUser(ctx, rootActor, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	tests := []struct {
		name    string
		actor   models.Actor
		target  string
		role    models.Role
		wantErr error
	}{
		{"missing target", rootActor, "missing", models.RoleAdmin, apperr.ErrNotFound},
		{"target is super admin", models.Actor{UserID: admin.ID, Role: admin.Role}, root.ID, models.RoleUser, apperr.ErrPermissionDenied},
		{"caller not super admin", models.Actor{UserID: admin.ID, Role: admin.Role}, user.ID, models.RoleUser, apperr.ErrPermissionDenied},
		{"assign super admin", rootActor, user.ID, models.RoleSuperAdmin, apperr.ErrPermissionDenied},
		{"unknown role", rootActor, user.ID, models.Role("OWNER"), apperr.ErrInvalidInput},
		{"unknown caller", models.Actor{UserID: "ghost", Role: models.RoleSuperAdmin}, user.ID, models.RoleUser, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.PromoteUser(ctx, tt.actor, tt.target, tt.role)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
