package services

import (
	"context"
	"strings"

	"bosma/internal/apperr"
	"bosma/internal/guard"
	"bosma/internal/models"
	"bosma/internal/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// sortFields maps accepted sortBy values to order columns.
var sortFields = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"totalPrice":    "total_price",
	"status":        "status",
	"paymentStatus": "payment_status",
	"customerName":  "customer_name",
}

// OrderQuery selects a page of orders.
type OrderQuery struct {
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
	SortBy        string `query:"sortBy"`
	SortOrder     string `query:"sortOrder"`
	Status        string `query:"status"`
	PaymentStatus string `query:"paymentStatus"`
	Search        string `query:"search"`
	UserID        string `query:"userId"`
}

type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	LastPage int   `json:"lastPage"`
	PerPage  int   `json:"perPage"`
}

type OrderPage struct {
	Data []models.Order `json:"data"`
	Meta PageMeta       `json:"meta"`
}

// OrderPatch is an administrative update. Nil fields are left unchanged; when
// Items is set the lines are replaced and the total recomputed from them.
type OrderPatch struct {
	CustomerName  *string            `json:"customerName,omitempty" validate:"omitempty,min=1,max=150"`
	CustomerPhone *string            `json:"customerPhone,omitempty" validate:"omitempty,min=1,max=32"`
	Region        *string            `json:"region,omitempty" validate:"omitempty,max=100"`
	Address       *string            `json:"address,omitempty" validate:"omitempty,max=255"`
	Items         *[]ManualOrderItem `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// OrderService handles reads and administrative changes of existing orders.
type OrderService struct {
	db       *gorm.DB
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	logger   *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *gorm.DB, orders repositories.OrderRepository, products repositories.ProductRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		db:       db,
		orders:   orders,
		products: products,
		logger:   logger,
	}
}

// List returns one page of orders.
func (s *OrderService) List(ctx context.Context, query OrderQuery) (*OrderPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = defaultPageLimit
	}
	if query.Limit > maxPageLimit {
		query.Limit = maxPageLimit
	}

	filter := repositories.OrderFilter{
		UserID:   query.UserID,
		Search:   strings.TrimSpace(query.Search),
		SortBy:   "created_at",
		SortDesc: true,
		Offset:   (query.Page - 1) * query.Limit,
		Limit:    query.Limit,
	}
	if query.SortBy != "" {
		column, ok := sortFields[query.SortBy]
		if !ok {
			return nil, apperr.InvalidInput("Invalid sort field: %s", query.SortBy)
		}
		filter.SortBy = column
	}
	switch strings.ToLower(query.SortOrder) {
	case "", "desc":
	case "asc":
		filter.SortDesc = false
	default:
		return nil, apperr.InvalidInput("Invalid sort order: %s", query.SortOrder)
	}
	if query.Status != "" {
		status := models.OrderStatus(strings.ToUpper(query.Status))
		if !status.Valid() {
			return nil, apperr.InvalidInput("Invalid order status: %s", query.Status)
		}
		filter.Status = status
	}
	if query.PaymentStatus != "" {
		status := models.PaymentStatus(strings.ToUpper(query.PaymentStatus))
		if !status.Valid() {
			return nil, apperr.InvalidInput("Invalid payment status: %s", query.PaymentStatus)
		}
		filter.PaymentStatus = status
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}

	return &OrderPage{
		Data: orders,
		Meta: PageMeta{
			Total:    total,
			Page:     query.Page,
			LastPage: int((total + int64(query.Limit) - 1) / int64(query.Limit)),
			PerPage:  query.Limit,
		},
	}, nil
}

// Get returns an order to its owner or to an administrator.
func (s *OrderService) Get(ctx context.Context, actor models.Actor, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.AssertOwnerOrRole(actor, order.UserID, models.RoleAdmin, "orders"); err != nil {
		s.logger.Warn("Order access denied", zap.String("user_id", actor.UserID), zap.String("order_id", id))
		return nil, err
	}
	return order, nil
}

// PrintDetails returns an order with its lines and the owner's contact
// details, for packing slips.
func (s *OrderService) PrintDetails(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetPrintDetails(ctx, id)
}

// FindUserOrders returns the user's orders, newest first.
func (s *OrderService) FindUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Update applies an administrative patch. Replacing the items and writing the
// new total happen in one transaction.
func (s *OrderService) Update(ctx context.Context, id string, patch OrderPatch) (*models.Order, error) {
	fields := map[string]any{}
	if patch.CustomerName != nil {
		name := strings.TrimSpace(*patch.CustomerName)
		if name == "" {
			return nil, apperr.InvalidInput("customerName must not be empty")
		}
		fields["customer_name"] = name
	}
	if patch.CustomerPhone != nil {
		phone := strings.TrimSpace(*patch.CustomerPhone)
		if phone == "" {
			return nil, apperr.InvalidInput("customerPhone must not be empty")
		}
		fields["customer_phone"] = phone
	}
	if patch.Region != nil {
		fields["region"] = orUnknown(*patch.Region)
	}
	if patch.Address != nil {
		fields["address"] = orUnknown(*patch.Address)
	}

	var items []models.OrderItem
	if patch.Items != nil {
		if len(*patch.Items) == 0 {
			return nil, apperr.InvalidInput("Order must contain at least one item")
		}
		for _, item := range *patch.Items {
			if err := validateManualItem(item); err != nil {
				return nil, err
			}
			items = append(items, item.toOrderItem())
		}
		fields["total_price"] = models.SumLines(items)
	}

	if len(fields) == 0 {
		return s.orders.GetByID(ctx, id)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		if items != nil {
			products := s.products.WithTx(tx)
			for _, item := range items {
				if _, err := products.GetVariant(ctx, item.VariantID); err != nil {
					if apperr.KindOf(err) == apperr.KindNotFound {
						return apperr.InvalidInput("variant %s not found", item.VariantID)
					}
					return err
				}
			}
		}
		if err := orders.UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		if items != nil {
			return orders.ReplaceItems(ctx, id, items)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update order", zap.String("order_id", id), zap.Error(err))
		return nil, apperr.AsStorage("Failed to update order", err)
	}
	return s.orders.GetByID(ctx, id)
}

// UpdateStatus moves an order to status. Any known status is accepted.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	status = models.OrderStatus(strings.ToUpper(string(status)))
	if !status.Valid() {
		return nil, apperr.InvalidInput("Invalid order status: %s", status)
	}
	if err := s.orders.UpdateFields(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	s.logger.Info("Order status changed", zap.String("order_id", id), zap.String("status", string(status)))
	return s.orders.GetByID(ctx, id)
}

// UpdatePaymentStatus records a payment outcome for an order.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error) {
	status = models.PaymentStatus(strings.ToUpper(string(status)))
	if !status.Valid() {
		return nil, apperr.InvalidInput("Invalid payment status: %s", status)
	}
	if err := s.orders.UpdateFields(ctx, id, map[string]any{"payment_status": status}); err != nil {
		return nil, err
	}
	s.logger.Info("Order payment status changed", zap.String("order_id", id), zap.String("payment_status", string(status)))
	return s.orders.GetByID(ctx, id)
}

// Remove hard-deletes an order and its items.
func (s *OrderService) Remove(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.String("order_id", id))
	return nil
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return models.UnknownShippingField
	}
	return s
}
