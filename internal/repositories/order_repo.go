package repositories

import (
	"context"

	"bosma/internal/models"

	"gorm.io/gorm"
)

// OrderFilter narrows and pages an order listing. Offset and Limit are applied
// after filtering; SortBy must be one of SortableOrderColumns.
type OrderFilter struct {
	UserID        string
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	Search        string
	SortBy        string
	SortDesc      bool
	Offset        int
	Limit         int
}

// SortableOrderColumns lists the columns an order listing may be sorted by.
var SortableOrderColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"total_price":    true,
	"status":         true,
	"payment_status": true,
	"customer_name":  true,
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetPrintDetails(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	ReplaceItems(ctx context.Context, orderID string, items []models.OrderItem) error
	Delete(ctx context.Context, id string) error
	CountPreviewUsage(ctx context.Context, url string) (int64, error)
}
