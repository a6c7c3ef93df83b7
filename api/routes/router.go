package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teslo-shop/storefront/api/controllers"
	admincontrollers "github.com/teslo-shop/storefront/api/controllers/admin"
	cartcontrollers "github.com/teslo-shop/storefront/api/controllers/cart"
	checkoutcontrollers "github.com/teslo-shop/storefront/api/controllers/checkout"
	ordercontrollers "github.com/teslo-shop/storefront/api/controllers/orders"
	"github.com/teslo-shop/storefront/api/middleware"
	"github.com/teslo-shop/storefront/internal/admin"
	"github.com/teslo-shop/storefront/internal/cart"
	"github.com/teslo-shop/storefront/internal/checkout"
	"github.com/teslo-shop/storefront/internal/orders"
	"github.com/teslo-shop/storefront/internal/payments"
	"github.com/teslo-shop/storefront/pkg/config"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/storage"
)

// Deps are the services the HTTP surface is built from. Idempotency, Readiness
// entries and Metrics may be nil.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Storage     storage.Provider
	Carts       cart.Service
	Checkout    checkout.Service
	Orders      orders.Service
	Payments    payments.Service
	Admin       admin.Service
	Idempotency middleware.IdempotencyStore
	Readiness   map[string]controllers.Pinger
	Metrics     http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Readiness, logg))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/config", controllers.PublicConfig(cfg, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.CartSession(deps.Storage, cfg.Cookie, logg))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Get(deps.Storage, deps.Carts, logg))
			r.Post("/items", cartcontrollers.AddItem(deps.Storage, deps.Carts, logg))
			r.Put("/items", cartcontrollers.SetQuantity(deps.Storage, deps.Carts, logg))
			r.Delete("/items", cartcontrollers.RemoveItem(deps.Storage, deps.Carts, logg))
		})

		r.Route("/api/checkout", func(r chi.Router) {
			r.Post("/advance", checkoutcontrollers.Advance(deps.Storage, deps.Carts, deps.Checkout, logg))
			r.Post("/address", checkoutcontrollers.SubmitAddress(deps.Storage, deps.Checkout, logg))
			r.Get("/summary", checkoutcontrollers.Summary(deps.Storage, deps.Checkout, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/ping", controllers.PrivatePing())

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.OptionalAuth(cfg.JWT, logg)).Get("/{orderId}", ordercontrollers.View(deps.Orders, logg))
			r.With(
				middleware.Auth(cfg.JWT, logg),
				middleware.Idempotency(deps.Idempotency, logg),
			).Post("/{orderId}/pay", ordercontrollers.Pay(deps.Payments, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Get("/orders", admincontrollers.Orders(deps.Admin, logg))
		r.Get("/products", admincontrollers.Products(deps.Admin, logg))
		r.Get("/users", admincontrollers.Users(deps.Admin, logg))
		r.With(middleware.Idempotency(deps.Idempotency, logg)).Put("/users", admincontrollers.UpdateRole(deps.Admin, logg))
	})

	return r
}
