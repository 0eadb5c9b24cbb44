package repositories

import (
	"context"

	"bosma/internal/models"

	"gorm.io/gorm"
)

// CartRepository defines the interface for cart and cart item data access.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	// LockByUserID loads the user's cart and its items for checkout, holding a
	// row lock on the cart where the database supports it.
	LockByUserID(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	GetItem(ctx context.Context, id string) (*models.CartItem, error)
	UpdateItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, id string) error
	ClearItems(ctx context.Context, cartID string) (int64, error)
	CountPreviewUsage(ctx context.Context, url string) (int64, error)
}
