// Package guard holds the ownership and role checks run before any mutation or
// single-resource read.
package guard

import (
	"bosma/internal/apperr"
	"bosma/internal/models"
)

// AssertOwnership fails with PermissionDenied when the caller does not own the
// resource.
func AssertOwnership(callerID, ownerID, resource string) error {
	if callerID == "" || callerID != ownerID {
		return apperr.PermissionDenied("Access denied: You can only access your own %s", resource)
	}
	return nil
}

// AssertRole fails unless caller ranks at or above minimum.
func AssertRole(caller, minimum models.Role) error {
	if !caller.AtLeast(minimum) {
		return apperr.PermissionDenied("Insufficient permissions: Required %s role", minimum)
	}
	return nil
}

// AssertSuperAdmin is the strict single-role check used for role promotion.
func AssertSuperAdmin(caller models.Role) error {
	if caller != models.RoleSuperAdmin {
		return apperr.PermissionDenied("Insufficient permissions: Required %s role", models.RoleSuperAdmin)
	}
	return nil
}

// ValidRole rejects roles outside the known hierarchy.
func ValidRole(role models.Role) error {
	if !role.Valid() {
		return apperr.InvalidInput("Invalid role: %s", role)
	}
	return nil
}

// AssertOwnerOrRole lets an actor through when it owns the resource or holds at
// least the given role.
func AssertOwnerOrRole(actor models.Actor, ownerID string, minimum models.Role, resource string) error {
	if actor.Role.AtLeast(minimum) {
		return nil
	}
	return AssertOwnership(actor.UserID, ownerID, resource)
}
