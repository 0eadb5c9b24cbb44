package repositories

import (
	"context"
	"fmt"
	"strings"

	"bosma/internal/apperr"
	"bosma/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func (r *GORMOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &GORMOrderRepository{db: tx}
}

// hydrated preloads items in position order with their variant and product.
func hydrated(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.position ASC, order_items.id ASC")
		}).
		Preload("Items.Variant.Product")
}

// Create inserts the order and its items. Item positions follow slice order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	for i := range order.Items {
		order.Items[i].Position = i
		order.Items[i].Variant = nil
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return translate(err, "order")
	}
	return nil
}

// GetPrintDetails is GetByID plus the owner's contact details.
func (r *GORMOrderRepository) GetPrintDetails(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := hydrated(r.db.WithContext(ctx)).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "full_name", "email", "phone")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("order with ID %s", id))
	}
	return &order, nil
}

// GetByID retrieves an order with items, variants and products.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := hydrated(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("order with ID %s", id))
	}
	return &order, nil
}

// filtered applies the non-paging parts of an OrderFilter.
func filtered(filter OrderFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.UserID != "" {
			db = db.Where("user_id = ?", filter.UserID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.PaymentStatus != "" {
			db = db.Where("payment_status = ?", filter.PaymentStatus)
		}
		if filter.Search != "" {
			pattern := containsPattern(strings.ToLower(filter.Search))
			db = db.Where(
				`LOWER(customer_phone) LIKE ? ESCAPE '\' OR LOWER(customer_name) LIKE ? ESCAPE '\' OR LOWER(region) LIKE ? ESCAPE '\' OR LOWER(address) LIKE ? ESCAPE '\'`,
				pattern, pattern, pattern, pattern,
			)
		}
		return db
	}
}

// List returns one page of orders matching filter and the total match count.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Scopes(filtered(filter)).Count(&total).Error
	if err != nil {
		return nil, 0, translate(err, "orders")
	}

	sortBy := filter.SortBy
	if !SortableOrderColumns[sortBy] {
		sortBy = "created_at"
	}

	var orders []models.Order
	err = hydrated(r.db.WithContext(ctx)).
		Scopes(filtered(filter)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: filter.SortDesc}).
		Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, translate(err, "orders")
	}
	return orders, total, nil
}

// ListByUser returns the user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := hydrated(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("orders of user %s", userID))
	}
	return orders, nil
}

// UpdateFields writes the given columns of one order.
func (r *GORMOrderRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("order with ID %s", id))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order with ID %s not found", id)
	}
	return nil
}

// ReplaceItems deletes every item of the order and inserts items in their place.
func (r *GORMOrderRepository) ReplaceItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return translate(err, fmt.Sprintf("items of order %s", orderID))
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = ""
		items[i].OrderID = orderID
		items[i].Position = i
	}
	if err := db.Omit("Variant").Create(&items).Error; err != nil {
		return translate(err, fmt.Sprintf("items of order %s", orderID))
	}
	return nil
}

// Delete removes an order and its items. Items are deleted explicitly since
// SQLite does not enforce the cascade unless foreign keys are switched on.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return translate(err, fmt.Sprintf("items of order %s", id))
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, fmt.Sprintf("order with ID %s", id))
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("order with ID %s not found", id)
		}
		return nil
	})
}

// CountPreviewUsage counts order items whose preview URLs contain url.
func (r *GORMOrderRepository) CountPreviewUsage(ctx context.Context, url string) (int64, error) {
	var count int64
	pattern := containsPattern(url)
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where(`front_preview_url LIKE ? ESCAPE '\' OR back_preview_url LIKE ? ESCAPE '\'`, pattern, pattern).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "order item preview usage")
	}
	return count, nil
}
