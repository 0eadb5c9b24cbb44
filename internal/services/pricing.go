package services

import (
	"context"
	"errors"

	"bosma/internal/apperr"
	"bosma/internal/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceResolver is the single authority for unit prices. It reads the live
// variant row on every call and never caches.
type PriceResolver struct {
	products repositories.ProductRepository
}

// NewPriceResolver creates a new PriceResolver.
func NewPriceResolver(products repositories.ProductRepository) *PriceResolver {
	return &PriceResolver{products: products}
}

// WithTx returns a resolver that reads inside tx.
func (p *PriceResolver) WithTx(tx *gorm.DB) *PriceResolver {
	return &PriceResolver{products: p.products.WithTx(tx)}
}

// ResolveUnitPrice returns the current price of a variant. An unknown variant
// is a client error.
func (p *PriceResolver) ResolveUnitPrice(ctx context.Context, variantID string) (decimal.Decimal, error) {
	variant, err := p.products.GetVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return decimal.Zero, apperr.InvalidInput("variant %s not found", variantID)
		}
		return decimal.Zero, err
	}
	return variant.Price, nil
}
