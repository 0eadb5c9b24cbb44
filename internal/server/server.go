// Package server assembles the HTTP application from its repositories and
// services.
package server

import (
	"time"

	"bosma/internal/handlers"
	"bosma/internal/metrics"
	"bosma/internal/middleware"
	"bosma/internal/repositories"
	"bosma/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external resources the server is built over. Publisher and
// Blobs are optional; leave them nil (not a typed nil pointer) to disable
// event publishing or uploads.
type Deps struct {
	DB        *gorm.DB
	JWTSecret string
	Publisher services.OrderEventPublisher
	Blobs     services.BlobStore
	Logger    *zap.Logger
	// DisableRequestLog turns off the per-request access log.
	DisableRequestLog bool
}

// Services exposes the wired services to main and to tests.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Cart          *services.CartService
	Checkout      *services.CheckoutService
	Orders        *services.OrderService
	Assets        *services.AssetService
	Notifications *services.NotificationService
}

type Server struct {
	App      *fiber.App
	Services Services
	Metrics  *metrics.ServerMetrics
}

// New wires repositories, services and handlers into a Fiber app.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	productRepo := repositories.NewGORMProductRepository(deps.DB)
	cartRepo := repositories.NewGORMCartRepository(deps.DB)
	orderRepo := repositories.NewGORMOrderRepository(deps.DB)
	assetRepo := repositories.NewGORMAssetRepository(deps.DB)
	notificationRepo := repositories.NewGORMNotificationRepository(deps.DB)

	// --- Services ---
	svc := Services{
		Auth:          services.NewAuthService(userRepo, deps.JWTSecret, logger),
		Users:         services.NewUserService(userRepo, logger),
		Cart:          services.NewCartService(cartRepo, productRepo, logger),
		Checkout:      services.NewCheckoutService(deps.DB, cartRepo, orderRepo, productRepo, userRepo, deps.Publisher, logger),
		Orders:        services.NewOrderService(deps.DB, orderRepo, productRepo, logger),
		Assets:        services.NewAssetService(assetRepo, cartRepo, orderRepo, deps.Blobs, logger),
		Notifications: services.NewNotificationService(notificationRepo, logger),
	}

	serverMetrics := metrics.NewServerMetrics()
	validate := validator.New()

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(logger),
		BodyLimit:    12 << 20,
	})

	if !deps.DisableRequestLog {
		app.Use(fiberlogger.New())
	}
	app.Use(serverMetrics.Middleware())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(serverMetrics.Handler()))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(svc.Auth, validate).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(svc.Auth, logger))
	handlers.NewCartHandler(svc.Cart, svc.Checkout, serverMetrics, validate).RegisterRoutes(protected)
	handlers.NewCartItemHandler(svc.Cart, validate).RegisterRoutes(protected)
	handlers.NewOrderHandler(svc.Orders, svc.Checkout, validate).RegisterRoutes(protected)
	handlers.NewAssetHandler(svc.Assets).RegisterRoutes(protected)
	handlers.NewUserHandler(svc.Users, validate).RegisterRoutes(protected)
	handlers.NewNotificationHandler(svc.Notifications).RegisterRoutes(protected)

	return &Server{
		App:      app,
		Services: svc,
		Metrics:  serverMetrics,
	}
}
