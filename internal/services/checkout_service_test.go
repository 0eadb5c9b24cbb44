package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"bosma/internal/apperr"
	"bosma/internal/models"
	"bosma/internal/repositories"
	"bosma/internal/services"
	"bosma/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// failingClearCartRepository fails ClearItems, the last step of a conversion.
type failingClearCartRepository struct {
	repositories.CartRepository
}

func (r failingClearCartRepository) WithTx(tx *gorm.DB) repositories.CartRepository {
	return failingClearCartRepository{CartRepository: r.CartRepository.WithTx(tx)}
}

func (r failingClearCartRepository) ClearItems(ctx context.Context, cartID string) (int64, error) {
	return 0, errors.New("disk full")
}

var shipping = services.ShippingDetails{CustomerName: "Budi", CustomerPhone: "+62811000111"}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCheckout_TotalExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	v1 := testutil.CreateVariant(t, f.db, "1000")
	v2 := testutil.CreateVariant(t, f.db, "500")

	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{
		VariantID:       v1.ID,
		Quantity:        2,
		FrontDesign:     models.Design{"text": "hello"},
		FrontPreviewURL: testutil.StringPtr("https://cdn.example.com/front.png"),
	})
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: v2.ID, Quantity: 1})
	require.NoError(t, err)

	order, err := f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(2500).Equal(order.TotalPrice), "got %s", order.TotalPrice)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.UnknownShippingField, order.Region)
	assert.Equal(t, models.UnknownShippingField, order.Address)
	require.Len(t, order.Items, 2)
	assert.Equal(t, v1.ID, order.Items[0].VariantID)
	assert.True(t, decimal.NewFromInt(1000).Equal(order.Items[0].Price))
	assert.Equal(t, "hello", order.Items[0].FrontDesign["text"])
	require.NotNil(t, order.Items[0].FrontPreviewURL)
	assert.Equal(t, "https://cdn.example.com/front.png", *order.Items[0].FrontPreviewURL)
	require.NotNil(t, order.Items[0].Variant)
	require.NotNil(t, order.Items[0].Variant.Product)
	assert.True(t, models.SumLines(order.Items).Equal(order.TotalPrice))

	cart, err := f.cart.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items, "cart is emptied")
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Cart{}), "cart row persists")

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, order.ID, events[0].OrderID)
	assert.Equal(t, "2500.00", events[0].Total)
}

func TestCheckout_PriceAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")

	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, f.products.UpdateVariantPrice(ctx, variant.ID, decimal.NewFromInt(1200)))

	order, err := f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, decimal.NewFromInt(1200).Equal(order.Items[0].Price))
	assert.True(t, decimal.NewFromInt(3600).Equal(order.TotalPrice))

	// Later catalog changes never reach the frozen order.
	require.NoError(t, f.products.UpdateVariantPrice(ctx, variant.ID, decimal.NewFromInt(9999)))
	reloaded, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1200).Equal(reloaded.Items[0].Price))
	assert.True(t, decimal.NewFromInt(3600).Equal(reloaded.TotalPrice))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)

	_, err := f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.Equal(t, "Cart is empty", err.Error())

	_, err = f.cart.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	_, err = f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	assert.Zero(t, countRows(t, f.db, &models.Order{}))
	assert.Empty(t, f.publisher.Events())
}

func TestCheckout_ShippingValidatedBeforeWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")
	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.checkout.ConvertCartToOrder(ctx, user.ID, services.ShippingDetails{CustomerName: "  ", CustomerPhone: "1"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	_, err = f.checkout.ConvertCartToOrder(ctx, user.ID, services.ShippingDetails{CustomerName: "Budi"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	assert.Zero(t, countRows(t, f.db, &models.Order{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &models.CartItem{}))
}

func TestCheckout_KeepsGivenShippingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")
	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	order, err := f.checkout.ConvertCartToOrder(ctx, user.ID, services.ShippingDetails{
		CustomerName:  "Budi",
		CustomerPhone: "0811",
		Region:        "Jakarta",
		Address:       "Jl. Sudirman 1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jakarta", order.Region)
	assert.Equal(t, "Jl. Sudirman 1", order.Address)
}

func TestCheckout_AtomicOnClearFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")

	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	f.wire(failingClearCartRepository{CartRepository: f.carts})

	_, err = f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrStorageFailure))

	assert.Zero(t, countRows(t, f.db, &models.Order{}), "no order is visible")
	assert.Zero(t, countRows(t, f.db, &models.OrderItem{}))
	assert.Equal(t, int64(2), countRows(t, f.db, &models.CartItem{}), "cart keeps its items")
	assert.Empty(t, f.publisher.Events())
}

func TestCheckout_UnknownVariantAbortsWholeConversion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	kept := testutil.CreateVariant(t, f.db, "1000")
	doomed := testutil.CreateVariant(t, f.db, "500")

	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: kept.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: doomed.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&models.ProductVariant{}, "id = ?", doomed.ID).Error)

	_, err = f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.Zero(t, countRows(t, f.db, &models.Order{}))
	assert.Equal(t, int64(2), countRows(t, f.db, &models.CartItem{}))
}

func TestCheckout_SecondConversionSeesEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")
	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	require.NoError(t, err)
	_, err = f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	assert.Equal(t, int64(1), countRows(t, f.db, &models.Order{}))
}

func TestCheckout_PublishFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")
	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	f.publisher.err = errors.New("broker down")

	order, err := f.checkout.ConvertCartToOrder(ctx, user.ID, shipping)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Order{}))
}

func TestCheckout_CreateOrderManual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.RoleUser)
	variant := testutil.CreateVariant(t, f.db, "1000")
	_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	order, err := f.checkout.CreateOrder(ctx, services.ManualOrderInput{
		UserID:          user.ID,
		ShippingDetails: services.ShippingDetails{CustomerName: "Walk-in", CustomerPhone: "0800"},
		Items: []services.ManualOrderItem{
			{VariantID: variant.ID, Quantity: 2, Price: decimal.NewFromInt(750)},
			{VariantID: variant.ID, Quantity: 1, Price: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1600).Equal(order.TotalPrice), "caller prices are used as given")
	assert.Len(t, order.Items, 2)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.CartItem{}), "manual orders leave the cart alone")

	_, err = f.checkout.CreateOrder(ctx, services.ManualOrderInput{
		UserID:          user.ID,
		ShippingDetails: shipping,
		Items:           []services.ManualOrderItem{{VariantID: "missing", Quantity: 1, Price: decimal.NewFromInt(1)}},
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = f.checkout.CreateOrder(ctx, services.ManualOrderInput{
		UserID:          "ghost",
		ShippingDetails: shipping,
		Items:           []services.ManualOrderItem{{VariantID: variant.ID, Quantity: 1, Price: decimal.NewFromInt(1)}},
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = f.checkout.CreateOrder(ctx, services.ManualOrderInput{UserID: user.ID, ShippingDetails: shipping})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	assert.Equal(t, int64(1), countRows(t, f.db, &models.Order{}))
}

// newFileDB opens a migrated SQLite database on disk with an unrestricted
// pool, so transactions really run on separate connections.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repositories.Open("sqlite", filepath.Join(t.TempDir(), "checkout.db"), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repositories.Migrate(db))
	return db
}

func TestCheckout_ConcurrentConversionsOfOneCart(t *testing.T) {
	const (
		rounds  = 5
		workers = 8
	)

	for round := 0; round < rounds; round++ {
		f := newFixtureOn(t, newFileDB(t))
		ctx := context.Background()
		user := testutil.CreateUser(t, f.db, models.RoleUser)
		variant := testutil.CreateVariant(t, f.db, "1000")
		_, err := f.cart.AddItem(ctx, user.ID, services.AddItemInput{VariantID: variant.ID, Quantity: 2})
		require.NoError(t, err)

		var (
			wg        sync.WaitGroup
			successes atomic.Int32
		)
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := f.checkout.ConvertCartToOrder(ctx, user.ID, shipping); err == nil {
					successes.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load(), "round %d", round)
		assert.Equal(t, int64(1), countRows(t, f.db, &models.Order{}), "round %d", round)
		assert.Zero(t, countRows(t, f.db, &models.CartItem{}), "round %d", round)
	}
}
