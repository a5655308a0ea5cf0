package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhlong-dev/industro-backend/api/controllers"
	"github.com/minhlong-dev/industro-backend/api/middleware"
	"github.com/minhlong-dev/industro-backend/internal/auth"
	"github.com/minhlong-dev/industro-backend/internal/cart"
	"github.com/minhlong-dev/industro-backend/internal/catalog"
	checkoutsvc "github.com/minhlong-dev/industro-backend/internal/checkout"
	"github.com/minhlong-dev/industro-backend/internal/orders"
	"github.com/minhlong-dev/industro-backend/pkg/config"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
	"github.com/minhlong-dev/industro-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       controllers.Pinger
	RedisPinger    controllers.Pinger
	Tokens         middleware.TokenParser
	Sessions       middleware.SessionChecker
	AuthService    *auth.Service
	CartService    *cart.Service
	CheckoutSvc    *checkoutsvc.Service
	CatalogService *catalog.Service
	OrdersService  *orders.Service
	HTTPMetrics    *metrics.HTTP
	MetricsHandler http.Handler
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DBPinger, d.RedisPinger))
	})

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
		r.With(middleware.Auth(d.Tokens, d.Sessions, logg)).
			Post("/logout", controllers.AuthLogout(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/brands", controllers.CatalogBrands(d.CatalogService, logg))
		r.Get("/categories", controllers.CatalogCategories(d.CatalogService, logg))
		r.Get("/products", controllers.CatalogProducts(d.CatalogService, logg))
		r.Get("/products/{slug}", controllers.CatalogProductBySlug(d.CatalogService, logg))
		r.Get("/search", controllers.CatalogSearch(d.CatalogService, logg))
		r.Get("/search/autocomplete", controllers.CatalogAutocomplete(d.CatalogService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(d.Tokens, d.Sessions, logg))
			r.Get("/", controllers.CartFetch(d.CartService, cfg.Cart, logg))
			r.Post("/items", controllers.CartAddItem(d.CartService, cfg.Cart, logg))
			r.Patch("/items/{variantId}", controllers.CartSetQuantity(d.CartService, cfg.Cart, logg))
			r.Delete("/items/{variantId}", controllers.CartRemoveItem(d.CartService, cfg.Cart, logg))
			r.With(middleware.Auth(d.Tokens, d.Sessions, logg)).
				Post("/merge", controllers.CartMerge(d.CartService, cfg.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(d.Tokens, d.Sessions, logg))
			r.Post("/preview", controllers.CheckoutPreview(d.CheckoutSvc, cfg.Cart, logg))
			r.Post("/", controllers.CheckoutPlaceOrder(d.CheckoutSvc, cfg.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Auth(d.Tokens, d.Sessions, logg))
			r.Get("/", controllers.OrdersListOwn(d.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrdersGetOwn(d.OrdersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.Tokens, d.Sessions, logg))
		r.Use(middleware.RequireBackOffice(logg))

		r.Post("/brands", controllers.AdminCreateBrand(d.CatalogService, logg))
		r.Patch("/brands/{brandId}", controllers.AdminUpdateBrand(d.CatalogService, logg))
		r.Post("/categories", controllers.AdminCreateCategory(d.CatalogService, logg))
		r.Patch("/categories/{categoryId}", controllers.AdminUpdateCategory(d.CatalogService, logg))
		r.Get("/products", controllers.AdminListProducts(d.CatalogService, logg))
		r.Post("/products", controllers.AdminCreateProduct(d.CatalogService, logg))
		r.Patch("/products/{productId}", controllers.AdminUpdateProduct(d.CatalogService, logg))
		r.Patch("/variants/{variantId}", controllers.AdminUpdateVariant(d.CatalogService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(d.OrdersService, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(d.OrdersService, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(d.OrdersService, logg))
		})
	})

	return r
}
