package guard_test

import (
	"errors"
	"testing"

	"bosma/internal/apperr"
	"bosma/internal/guard"
	"bosma/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAssertOwnership(t *testing.T) {
	assert.NoError(t, guard.AssertOwnership("user-1", "user-1", "order"))

	err := guard.AssertOwnership("user-1", "user-2", "order")
	assert.True(t, errors.Is(err, apperr.ErrPermissionDenied))
	assert.Contains(t, err.Error(), "your own order")

	err = guard.AssertOwnership("", "", "cart")
	assert.True(t, errors.Is(err, apperr.ErrPermissionDenied))
}

func TestAssertRole(t *testing.T) {
	tests := []struct {
		caller  models.Role
		minimum models.Role
		allowed bool
	}{
		{models.RoleUser, models.RoleUser, true},
		{models.RoleUser, models.RoleAdmin, false},
		{models.RoleAdmin, models.RoleAdmin, true},
		{models.RoleAdmin, models.RoleSuperAdmin, false},
		{models.RoleSuperAdmin, models.RoleAdmin, true},
		{models.Role("GUEST"), models.RoleUser, false},
	}
	for _, tt := range tests {
		err := guard.AssertRole(tt.caller, tt.minimum)
		if tt.allowed {
			assert.NoError(t, err, "%s >= %s", tt.caller, tt.minimum)
		} else {
			assert.True(t, errors.Is(err, apperr.ErrPermissionDenied), "%s < %s", tt.caller, tt.minimum)
		}
	}
}

func TestAssertSuperAdmin(t *testing.T) {
	assert.NoError(t, guard.AssertSuperAdmin(models.RoleSuperAdmin))
	assert.Error(t, guard.AssertSuperAdmin(models.RoleAdmin))
}

func TestValidRole(t *testing.T) {
	assert.NoError(t, guard.ValidRole(models.RoleAdmin))
	assert.True(t, errors.Is(guard.ValidRole("OWNER"), apperr.ErrInvalidInput))
}

func TestAssertOwnerOrRole(t *testing.T) {
	admin := models.Actor{UserID: "admin", Role: models.RoleAdmin}
	user := models.Actor{UserID: "user-1", Role: models.RoleUser}

	assert.NoError(t, guard.AssertOwnerOrRole(admin, "user-1", models.RoleAdmin, "order"))
	assert.NoError(t, guard.AssertOwnerOrRole(user, "user-1", models.RoleAdmin, "order"))
	assert.Error(t, guard.AssertOwnerOrRole(user, "user-2", models.RoleAdmin, "order"))
}
