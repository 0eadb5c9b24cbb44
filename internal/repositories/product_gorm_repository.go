package repositories

import (
	"context"
	"fmt"

	"bosma/internal/apperr"
	"bosma/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &GORMProductRepository{db: tx}
}

// GetVariant reads the current catalog row for a variant, product included.
func (r *GORMProductRepository) GetVariant(ctx context.Context, id string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).Preload("Product").First(&variant, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("variant %s", id))
	}
	return &variant, nil
}

// CreateProduct creates a product together with its variants.
func (r *GORMProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return translate(err, fmt.Sprintf("product %s", product.Name))
	}
	return nil
}

// UpdateVariantPrice changes the live price of a variant.
func (r *GORMProductRepository) UpdateVariantPrice(ctx context.Context, id string, price decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).Where("id = ?", id).Update("price", price)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("variant %s", id))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("variant %s not found", id)
	}
	return nil
}
