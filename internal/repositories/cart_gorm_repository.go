package repositories

import (
	"context"
	"fmt"

	"bosma/internal/apperr"
	"bosma/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

func (r *GORMCartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &GORMCartRepository{db: tx}
}

func orderedCartItems(db *gorm.DB) *gorm.DB {
	return db.Order("cart_items.created_at ASC, cart_items.id ASC")
}

// GetByUserID returns the user's cart with items, variants and products.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", orderedCartItems).
		Preload("Items.Variant.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("cart of user %s", userID))
	}
	return &cart, nil
}

// Create creates an empty cart.
func (r *GORMCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return translate(err, fmt.Sprintf("cart of user %s", cart.UserID))
	}
	return nil
}

func (r *GORMCartRepository) LockByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	query := r.db.WithContext(ctx)
	// SQLite serializes writers itself and has no FOR UPDATE.
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	if err := query.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("cart of user %s", userID))
	}

	err := orderedCartItems(r.db.WithContext(ctx)).
		Preload("Variant").
		Where("cart_id = ?", cart.ID).
		Find(&cart.Items).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("items of cart %s", cart.ID))
	}
	return &cart, nil
}

// AddItem inserts a new cart line.
func (r *GORMCartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return translate(err, "cart item")
	}
	return nil
}

// GetItem returns a cart item together with its cart, so callers can check who
// owns it.
func (r *GORMCartRepository) GetItem(ctx context.Context, id string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Cart").
		Preload("Variant.Product").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "cart item")
	}
	return &item, nil
}

// UpdateItem writes quantity and design fields of an existing item.
func (r *GORMCartRepository) UpdateItem(ctx context.Context, item *models.CartItem) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", item.ID).
		Select("quantity", "front_design", "back_design").
		Updates(&models.CartItem{LineDetails: models.LineDetails{
			Quantity:    item.Quantity,
			FrontDesign: item.FrontDesign,
			BackDesign:  item.BackDesign,
		}})
	if res.Error != nil {
		return translate(res.Error, "cart item")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart item not found")
	}
	return nil
}

// DeleteItem hard-deletes one cart item.
func (r *GORMCartRepository) DeleteItem(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "cart item")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart item not found")
	}
	return nil
}

// ClearItems deletes every item of a cart and reports how many were removed.
// Clearing an empty cart is not an error.
func (r *GORMCartRepository) ClearItems(ctx context.Context, cartID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, translate(res.Error, fmt.Sprintf("items of cart %s", cartID))
	}
	return res.RowsAffected, nil
}

// CountPreviewUsage counts cart items whose preview URLs contain url.
func (r *GORMCartRepository) CountPreviewUsage(ctx context.Context, url string) (int64, error) {
	var count int64
	pattern := containsPattern(url)
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where(`front_preview_url LIKE ? ESCAPE '\' OR back_preview_url LIKE ? ESCAPE '\'`, pattern, pattern).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "cart item preview usage")
	}
	return count, nil
}
