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

// AddItemInput describes a new cart line.
type AddItemInput struct {
	VariantID       string        `json:"variantId" validate:"required"`
	Quantity        int           `json:"quantity" validate:"required,min=1"`
	FrontDesign     models.Design `json:"frontDesign,omitempty"`
	BackDesign      models.Design `json:"backDesign,omitempty"`
	FrontPreviewURL *string       `json:"frontPreviewUrl,omitempty" validate:"omitempty,url"`
	BackPreviewURL  *string       `json:"backPreviewUrl,omitempty" validate:"omitempty,url"`
}

// UpdateItemInput changes a cart line. Nil designs are left as they are.
type UpdateItemInput struct {
	Quantity    int           `json:"quantity" validate:"required,min=1"`
	FrontDesign models.Design `json:"frontDesign,omitempty"`
	BackDesign  models.Design `json:"backDesign,omitempty"`
}

// CartService owns the mutable cart of each user.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first use.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{UserID: userID}
	err = s.carts.Create(ctx, cart)
	switch {
	case err == nil:
		s.logger.Debug("Created cart", zap.String("user_id", userID), zap.String("cart_id", cart.ID))
		cart.Items = []models.CartItem{}
		return cart, nil
	case errors.Is(err, apperr.ErrConflict):
		// A concurrent request created it first.
		return s.carts.GetByUserID(ctx, userID)
	default:
		s.logger.Error("Failed to create cart", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
}

// AddItem appends a new line to the user's cart. Lines are never merged, even
// for the same variant and design.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*models.CartItem, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}
	if err := s.assertVariantExists(ctx, input.VariantID); err != nil {
		return nil, err
	}

	cart, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartID: cart.ID,
		LineDetails: models.LineDetails{
			VariantID:       input.VariantID,
			Quantity:        input.Quantity,
			FrontDesign:     input.FrontDesign,
			BackDesign:      input.BackDesign,
			FrontPreviewURL: input.FrontPreviewURL,
			BackPreviewURL:  input.BackPreviewURL,
		},
	}
	if err := s.carts.AddItem(ctx, item); err != nil {
		s.logger.Error("Failed to add cart item",
			zap.String("user_id", userID),
			zap.String("cart_id", cart.ID),
			zap.Error(err),
		)
		return nil, err
	}
	return s.carts.GetItem(ctx, item.ID)
}

// GetItem returns one of the user's cart items. Items of other users are
// reported as not found.
func (s *CartService) GetItem(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Cart item not found")
		}
		return nil, err
	}
	if item.Cart == nil || guard.AssertOwnership(userID, item.Cart.UserID, "cart item") != nil {
		s.logger.Warn("Cart item access denied", zap.String("user_id", userID), zap.String("item_id", itemID))
		return nil, apperr.NotFound("Cart item not found")
	}
	return item, nil
}

// UpdateItem sets the quantity of a cart item and, when given, its designs.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, input UpdateItemInput) (*models.CartItem, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}

	item, err := s.GetItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.Quantity = input.Quantity
	if input.FrontDesign != nil {
		item.FrontDesign = input.FrontDesign
	}
	if input.BackDesign != nil {
		item.BackDesign = input.BackDesign
	}
	if err := s.carts.UpdateItem(ctx, item); err != nil {
		s.logger.Error("Failed to update cart item", zap.String("item_id", itemID), zap.Error(err))
		return nil, err
	}
	return s.carts.GetItem(ctx, itemID)
}

// RemoveItem hard-deletes one of the user's cart items.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if _, err := s.GetItem(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.carts.DeleteItem(ctx, itemID); err != nil {
		s.logger.Error("Failed to delete cart item", zap.String("item_id", itemID), zap.Error(err))
		return err
	}
	return nil
}

// ClearCart removes every item from the user's cart and reports how many were
// removed. A missing or empty cart clears to zero without error.
func (s *CartService) ClearCart(ctx context.Context, userID string) (int64, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed, err := s.carts.ClearItems(ctx, cart.ID)
	if err != nil {
		s.logger.Error("Failed to clear cart", zap.String("cart_id", cart.ID), zap.Error(err))
		return 0, err
	}
	return removed, nil
}

func (s *CartService) assertVariantExists(ctx context.Context, variantID string) error {
	if variantID == "" {
		return apperr.InvalidInput("variantId is required")
	}
	_, err := s.products.GetVariant(ctx, variantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.InvalidInput("variant %s not found", variantID)
	}
	return err
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return apperr.InvalidInput("Quantity must be at least 1")
	}
	return nil
}
