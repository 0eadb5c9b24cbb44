package services_test

import (
	"context"
	"errors"
	"testing"

	"bosma/internal/apperr"
	"bosma/internal/models"
	"bosma/internal/services"
	"bosma/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_GetOrCreateCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)

	first, err := f.cart.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, first.Items)

	second, err := f.cart.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCartService_AddItemNeverMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")

	input := services.AddItemInput{VariantID: variant.ID, Quantity: 1, FrontDesign: models.Design{"text": "A"}}
	_, err := f.cart.AddItem(ctx, user.ID, input)
	require.NoError(t, err)
	item, err := f.cart.AddItem(ctx, user.ID, input)
	require.NoError(t, err)
	require.NotNil(t, item.Variant)
	assert.Equal(t, variant.ID, item.Variant.ID)

	cart, err := f.cart.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestCartService_QuantityBound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")

	for _, qty := range []int{0, -3} {
		_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: qty})
		assert.True(t, errors.Is(err, apperr.ErrInvalidInput), "quantity %d", qty)
	}

	var carts int64
	require.NoError(t, f.db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Zero(t, carts, "rejected adds must not write anything")

	item, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = f.cart.UpdateItem(ctx, user.ID, item.ID, services.UpdateItemInput{Quantity: 0})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	got, err := f.cart.GetItem(ctx, user.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
}

func TestCartService_AddItemUnknownVariant(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, models.RoleUser)

	_, err := f.cart.AddItem(context.Background(), user.ID, services.AddItemInput{VariantID: "nope", Quantity: 1})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestCartService_UpdateItemKeepsDesignsWhenOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")

	item, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{
		VariantID:   variant.ID,
		Quantity:    1,
		FrontDesign: models.Design{"text": "front"},
		BackDesign:  models.Design{"text": "back"},
	})
	require.NoError(t, err)

	updated, err := f.cart.UpdateItem(ctx, user.ID, item.ID, services.UpdateItemInput{
		Quantity:   3,
		BackDesign: models.Design{"text": "new back"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, "front", updated.FrontDesign["text"])
	assert.Equal(t, "new back", updated.BackDesign["text"])
}

func TestCartService_OwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, models.RoleUser)
	bob := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")

	item, err := f.cart.AddItem(ctx, alice.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.cart.GetItem(ctx, bob.ID, item.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = f.cart.UpdateItem(ctx, bob.ID, item.ID, services.UpdateItemInput{Quantity: 9})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = f.cart.RemoveItem(ctx, bob.ID, item.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	got, err := f.cart.GetItem(ctx, alice.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestCartService_RemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")

	item, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.cart.RemoveItem(ctx, user.ID, item.ID))
	_, err = f.cart.GetItem(ctx, user.ID, item.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCartService_ClearCartIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")

	removed, err := f.cart.ClearCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, removed, "no cart yet")

	for i := 0; i < 2; i++ {
		_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
		require.NoError(t, err)
	}

	removed, err = f.cart.ClearCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = f.cart.ClearCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
