package services_test

import (
	"sync"
	"testing"

	"bosma/internal/repositories"
	"bosma/internal/services"
	"bosma/internal/testutil"
	"bosma/pkg/rabbitmq"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []rabbitmq.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(event rabbitmq.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []rabbitmq.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]rabbitmq.OrderEvent(nil), p.events...)
}

type fixture struct {
	db        *gorm.DB
	carts     repositories.CartRepository
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	users     repositories.UserRepository
	publisher *recordingPublisher

	cart     *services.CartService
	checkout *services.CheckoutService
	order    *services.OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewDB(t))
}

// newFixtureOn builds the fixture over an already migrated database.
func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	f := &fixture{
		db:        db,
		carts:     repositories.NewGORMCartRepository(db),
		orders:    repositories.NewGORMOrderRepository(db),
		products:  repositories.NewGORMProductRepository(db),
		users:     repositories.NewGORMUserRepository(db),
		publisher: &recordingPublisher{},
	}
	f.wire(f.carts)
	return f
}

// wire (re)builds the services over the given cart repository.
func (f *fixture) wire(carts repositories.CartRepository) {
	logger := zap.NewNop()
	f.cart = services.NewCartService(carts, f.products, logger)
	f.checkout = services.NewCheckoutService(f.db, carts, f.orders, f.products, f.users, f.publisher, logger)
	f.order = services.NewOrderService(f.db, f.orders, f.products, logger)
}
