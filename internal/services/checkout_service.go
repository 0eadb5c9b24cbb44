package services

import (
	"context"
	"errors"
	"strings"

	"bosma/internal/apperr"
	"bosma/internal/models"
	"bosma/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShippingDetails are the customer fields snapshotted onto an order.
type ShippingDetails struct {
	CustomerName  string `json:"customerName" validate:"required,max=150"`
	CustomerPhone string `json:"customerPhone" validate:"required,max=32"`
	Region        string `json:"region,omitempty" validate:"omitempty,max=100"`
	Address       string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// normalized trims every field and fills the optional ones with
// models.UnknownShippingField.
func (d ShippingDetails) normalized() ShippingDetails {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.CustomerPhone = strings.TrimSpace(d.CustomerPhone)
	d.Region = strings.TrimSpace(d.Region)
	d.Address = strings.TrimSpace(d.Address)
	if d.Region == "" {
		d.Region = models.UnknownShippingField
	}
	if d.Address == "" {
		d.Address = models.UnknownShippingField
	}
	return d
}

func (d ShippingDetails) validate() error {
	if d.CustomerName == "" {
		return apperr.InvalidInput("customerName is required")
	}
	if d.CustomerPhone == "" {
		return apperr.InvalidInput("customerPhone is required")
	}
	return nil
}

// ManualOrderItem is a line of an administratively created order. Its price is
// taken as given.
type ManualOrderItem struct {
	VariantID       string          `json:"variantId" validate:"required"`
	Quantity        int             `json:"quantity" validate:"required,min=1"`
	Price           decimal.Decimal `json:"price"`
	FrontDesign     models.Design   `json:"frontDesign,omitempty"`
	BackDesign      models.Design   `json:"backDesign,omitempty"`
	FrontPreviewURL *string         `json:"frontPreviewUrl,omitempty"`
	BackPreviewURL  *string         `json:"backPreviewUrl,omitempty"`
}

func (i ManualOrderItem) toOrderItem() models.OrderItem {
	return models.OrderItem{
		LineDetails: models.LineDetails{
			VariantID:       i.VariantID,
			Quantity:        i.Quantity,
			FrontDesign:     i.FrontDesign,
			BackDesign:      i.BackDesign,
			FrontPreviewURL: i.FrontPreviewURL,
			BackPreviewURL:  i.BackPreviewURL,
		},
		Price: i.Price,
	}
}

// ManualOrderInput is the body of an administrative order creation.
type ManualOrderInput struct {
	UserID string `json:"userId" validate:"required"`
	ShippingDetails
	Items []ManualOrderItem `json:"items" validate:"required,min=1,dive"`
}

// CheckoutService turns carts into orders.
type CheckoutService struct {
	db        *gorm.DB
	carts     repositories.CartRepository
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	users     repositories.UserRepository
	pricer    *PriceResolver
	publisher OrderEventPublisher
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(
	db *gorm.DB,
	carts repositories.CartRepository,
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	publisher OrderEventPublisher,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		db:        db,
		carts:     carts,
		orders:    orders,
		products:  products,
		users:     users,
		pricer:    NewPriceResolver(products),
		publisher: publisher,
		logger:    logger,
	}
}

// ConvertCartToOrder creates an order from the user's cart and empties the
// cart, as one transaction. Every unit price is read from the catalog at this
// moment. On any failure the cart is left as it was and no order exists.
func (s *CheckoutService) ConvertCartToOrder(ctx context.Context, userID string, details ShippingDetails) (*models.Order, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	var orderID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		cart, err := carts.LockByUserID(ctx, userID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.InvalidInput("Cart is empty")
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return apperr.InvalidInput("Cart is empty")
		}

		pricer := s.pricer.WithTx(tx)
		order := &models.Order{
			UserID:        userID,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			CustomerName:  details.CustomerName,
			CustomerPhone: details.CustomerPhone,
			Region:        details.Region,
			Address:       details.Address,
			Items:         make([]models.OrderItem, 0, len(cart.Items)),
		}
		for _, item := range cart.Items {
			price, err := pricer.ResolveUnitPrice(ctx, item.VariantID)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				LineDetails: item.LineDetails,
				Price:       price,
			})
		}
		order.CalculateTotal()

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		if _, err := carts.ClearItems(ctx, cart.ID); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInvalidInput {
			s.logger.Info("Checkout rejected", zap.String("user_id", userID), zap.Error(err))
		} else {
			s.logger.Error("Checkout failed, rolled back", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, s.checkoutError(err)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to load created order", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Order created from cart",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("total", order.TotalPrice.String()),
		zap.Int("items", len(order.Items)),
	)

	publishOrderCreated(s.publisher, s.logger, order)
	return order, nil
}

// CreateOrder is the administrative path: the caller supplies the user, the
// lines and their prices. The total is computed from the lines and no cart is
// touched.
func (s *CheckoutService) CreateOrder(ctx context.Context, input ManualOrderInput) (*models.Order, error) {
	details := input.ShippingDetails.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, apperr.InvalidInput("Order must contain at least one item")
	}
	for _, item := range input.Items {
		if err := validateManualItem(item); err != nil {
			return nil, err
		}
	}
	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.InvalidInput("user %s not found", input.UserID)
		}
		return nil, err
	}

	order := &models.Order{
		UserID:        input.UserID,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		CustomerName:  details.CustomerName,
		CustomerPhone: details.CustomerPhone,
		Region:        details.Region,
		Address:       details.Address,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, item.toOrderItem())
	}
	order.CalculateTotal()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		for _, item := range order.Items {
			if _, err := products.GetVariant(ctx, item.VariantID); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return apperr.InvalidInput("variant %s not found", item.VariantID)
				}
				return err
			}
		}
		return s.orders.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		s.logger.Error("Failed to create order", zap.String("user_id", input.UserID), zap.Error(err))
		return nil, apperr.AsStorage("Failed to create order", err)
	}

	created, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	publishOrderCreated(s.publisher, s.logger, created)
	return created, nil
}

// checkoutError keeps client errors as they are and folds everything else into
// one storage failure.
func (s *CheckoutService) checkoutError(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput, apperr.KindPermissionDenied:
		return err
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindStorageFailure {
			return err
		}
		return apperr.Storage("Failed to create order from cart", err)
	}
}

func validateManualItem(item ManualOrderItem) error {
	if item.VariantID == "" {
		return apperr.InvalidInput("variantId is required")
	}
	if err := validateQuantity(item.Quantity); err != nil {
		return err
	}
	if item.Price.IsNegative() {
		return apperr.InvalidInput("Price must not be negative")
	}
	return nil
}
