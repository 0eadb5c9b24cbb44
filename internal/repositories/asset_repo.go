package repositories

import (
	"context"
	"fmt"

	"bosma/internal/apperr"
	"bosma/internal/models"

	"gorm.io/gorm"
)

// AssetRepository defines the interface for asset data access.
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	ListByUser(ctx context.Context, userID string) ([]models.Asset, error)
	Delete(ctx context.Context, id string) error
}

// GORMAssetRepository is a GORM implementation of AssetRepository.
type GORMAssetRepository struct {
	db *gorm.DB
}

func NewGORMAssetRepository(db *gorm.DB) *GORMAssetRepository {
	return &GORMAssetRepository{db: db}
}

func (r *GORMAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return translate(err, "asset")
	}
	return nil
}

func (r *GORMAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("asset %s", id))
	}
	return &asset, nil
}

func (r *GORMAssetRepository) ListByUser(ctx context.Context, userID string) ([]models.Asset, error) {
	var assets []models.Asset
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&assets).Error
	if err != nil {
		return nil, translate(err, "assets")
	}
	return assets, nil
}

func (r *GORMAssetRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Asset{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("asset %s", id))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("asset %s not found", id)
	}
	return nil
}
