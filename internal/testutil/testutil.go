// Package testutil builds isolated databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"bosma/internal/models"
	"bosma/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
// The pool is limited to one connection so the database lives as long as the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := repositories.Open("sqlite", dsn, logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	return db
}

// CreateUser inserts an active user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	id := uuid.New().String()
	user := &models.User{
		ID:       id,
		FullName: "User " + id[:8],
		Email:    id[:8] + "@example.com",
		Phone:    "0812" + id[:6],
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateVariant inserts a product with a single variant at price.
func CreateVariant(t *testing.T, db *gorm.DB, price string) *models.ProductVariant {
	t.Helper()

	product := &models.Product{
		Name: "T-Shirt",
		Variants: []models.ProductVariant{
			{Name: "Basic", Size: "M", Color: "Black", Price: decimal.RequireFromString(price)},
		},
	}
	require.NoError(t, repositories.NewGORMProductRepository(db).CreateProduct(context.Background(), product))
	return &product.Variants[0]
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
