package services

import (
	"context"
	"errors"

	"bosma/internal/apperr"
	"bosma/internal/guard"
	"bosma/internal/models"
	"bosma/internal/repositories"

	"go.uber.org/zap"
)

// AssetFolder is the blob store folder user uploads go to.
const AssetFolder = "assets"

var allowedAssetTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// BlobStore stores uploaded files and serves them by public URL.
type BlobStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// AssetUsage counts the cart and order lines whose preview URLs mention an asset.
type AssetUsage struct {
	CartItems  int64 `json:"cartItems"`
	OrderItems int64 `json:"orderItems"`
}

func (u AssetUsage) InUse() bool {
	return u.CartItems > 0 || u.OrderItems > 0
}

// AssetService manages uploaded design assets.
type AssetService struct {
	assets repositories.AssetRepository
	carts  repositories.CartRepository
	orders repositories.OrderRepository
	blobs  BlobStore
	logger *zap.Logger
}

// NewAssetService creates a new AssetService. blobs may be nil when no blob
// store is configured; uploads then fail and deletes only remove the row.
func NewAssetService(
	assets repositories.AssetRepository,
	carts repositories.CartRepository,
	orders repositories.OrderRepository,
	blobs BlobStore,
	logger *zap.Logger,
) *AssetService {
	return &AssetService{
		assets: assets,
		carts:  carts,
		orders: orders,
		blobs:  blobs,
		logger: logger,
	}
}

// Upload stores an image and records it as an asset of the user.
func (s *AssetService) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (*models.Asset, error) {
	if len(data) == 0 {
		return nil, apperr.InvalidInput("No file provided")
	}
	if !allowedAssetTypes[contentType] {
		return nil, apperr.InvalidInput("File type %s is not allowed. Allowed types: image/jpeg, image/jpg, image/png", contentType)
	}
	if s.blobs == nil {
		return nil, apperr.InvalidInput("File storage is not configured")
	}

	url, err := s.blobs.Upload(ctx, AssetFolder, filename, contentType, data)
	if err != nil {
		s.logger.Error("Failed to upload asset", zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Storage("File upload failed", err)
	}

	asset := &models.Asset{UserID: userID, URL: url}
	if err := s.assets.Create(ctx, asset); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("Asset already exists")
		}
		return nil, err
	}
	return asset, nil
}

// List returns the user's assets.
func (s *AssetService) List(ctx context.Context, userID string) ([]models.Asset, error) {
	assets, err := s.assets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}

// Usage reports how many cart and order lines reference url by substring.
func (s *AssetService) Usage(ctx context.Context, url string) (AssetUsage, error) {
	cartItems, err := s.carts.CountPreviewUsage(ctx, url)
	if err != nil {
		return AssetUsage{}, err
	}
	orderItems, err := s.orders.CountPreviewUsage(ctx, url)
	if err != nil {
		return AssetUsage{}, err
	}
	return AssetUsage{CartItems: cartItems, OrderItems: orderItems}, nil
}

// Delete removes one of the user's assets. Usage by cart or order lines only
// produces a warning. The blob and the row are deleted independently: a
// failed blob delete is logged and the row is removed anyway.
func (s *AssetService) Delete(ctx context.Context, userID, id string) (AssetUsage, error) {
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return AssetUsage{}, err
	}
	if err := guard.AssertOwnership(userID, asset.UserID, "asset"); err != nil {
		return AssetUsage{}, err
	}

	usage, err := s.Usage(ctx, asset.URL)
	if err != nil {
		return AssetUsage{}, err
	}
	if usage.InUse() {
		s.logger.Warn("Asset is still referenced, proceeding with deletion",
			zap.String("asset_id", asset.ID),
			zap.Int64("cart_items", usage.CartItems),
			zap.Int64("order_items", usage.OrderItems),
		)
	}

	if s.blobs != nil {
		if err := s.blobs.Delete(ctx, asset.URL); err != nil {
			s.logger.Warn("Failed to delete asset blob, deleting record anyway",
				zap.String("asset_id", asset.ID),
				zap.String("url", asset.URL),
				zap.Error(err),
			)
		}
	}

	if err := s.assets.Delete(ctx, asset.ID); err != nil {
		return AssetUsage{}, err
	}
	return usage, nil
}
