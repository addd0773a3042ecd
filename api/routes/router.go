package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dcastano/vinoteca-backend/api/controllers"
	"github.com/dcastano/vinoteca-backend/api/middleware"
	"github.com/dcastano/vinoteca-backend/internal/cart"
	checkoutsvc "github.com/dcastano/vinoteca-backend/internal/checkout"
	"github.com/dcastano/vinoteca-backend/internal/inventory"
	"github.com/dcastano/vinoteca-backend/internal/orders"
	"github.com/dcastano/vinoteca-backend/internal/products"
	"github.com/dcastano/vinoteca-backend/pkg/config"
	"github.com/dcastano/vinoteca-backend/pkg/db"
	"github.com/dcastano/vinoteca-backend/pkg/logger"
	"github.com/dcastano/vinoteca-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               db.Pinger
	Redis            *redis.Client
	Registry         *prometheus.Registry
	ProductService   products.Service
	CartService      cart.Service
	CheckoutService  checkoutsvc.Service
	OrderService     orders.Service
	InventoryService inventory.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// Assign the interface only when the client exists; a typed-nil
	// *redis.Client would slip past the handler's nil check.
	var redisPinger redis.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		var idempotencyStore redis.IdempotencyStore
		if deps.Redis != nil {
			idempotencyStore = deps.Redis
		}
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.ProductService, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.ProductService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", controllers.CreateCart(deps.CartService, logg))
			r.Get("/{cartId}", controllers.GetCart(deps.CartService, logg))
			r.Route("/items", func(r chi.Router) {
				r.Post("/", controllers.AddCartItem(deps.CartService, logg))
				r.Patch("/{itemId}", controllers.UpdateCartItem(deps.CartService, logg))
				r.Delete("/{itemId}", controllers.RemoveCartItem(deps.CartService, logg))
			})
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.Checkout(deps.CheckoutService, logg))
			r.Post("/direct", controllers.CheckoutDirect(deps.CheckoutService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.OrderService, logg))
			r.Patch("/{orderId}/status", controllers.UpdateOrderStatus(deps.OrderService, logg))
			r.Patch("/{orderId}/payment", controllers.UpdatePaymentStatus(deps.OrderService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/adjust", controllers.AdjustStock(deps.InventoryService, logg))
			r.Get("/history/{productId}", controllers.StockHistory(deps.InventoryService, logg))
		})
	})

	return r
}
