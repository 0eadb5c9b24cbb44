package repositories

import (
	"context"

	"bosma/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRepository is the catalog: products and their priced variants.
type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	GetVariant(ctx context.Context, id string) (*models.ProductVariant, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateVariantPrice(ctx context.Context, id string, price decimal.Decimal) error
}
