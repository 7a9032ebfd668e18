package api

import (
	"bengaliboutique_server/api/admin"
	"bengaliboutique_server/api/cart"
	"bengaliboutique_server/api/debug"
	"bengaliboutique_server/api/health"
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/api/orders"
	"bengaliboutique_server/api/products"
	"bengaliboutique_server/api/wishlist"
	"bengaliboutique_server/config"
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
)

func App(cfg *structs.Config, sm *services.ServiceManager) chi.Router {
	r := chi.NewRouter()

	// create loggers
	mwLogger := config.NewLogger(false)
	standardLogger := config.NewLogger(true)

	var limiter middleware.RateLimiter
	if sm.CacheService != nil {
		limiter = sm.CacheService
	}

	// Initialize middleware
	mw := middleware.NewMiddleware(cfg, mwLogger, sm.AuthService, limiter)

	// Core infra
	r.Use(chiware.RequestID)
	r.Use(chiware.RealIP)
	r.Use(chiware.Recoverer)

	// Limits & security
	r.Use(mw.BodyLimit(10 * 1024 * 1024))
	r.Use(mw.SecurityHeaders())

	// Observability
	r.Use(gecho.Handlers.CreateLoggingMiddleware(mwLogger))
	r.Use(middleware.MetricsMiddleware)

	// CORS (must be before auth / csrf)
	r.Use(mw.SetupCORS().Handler)
	r.Use(mw.RateLimitMiddleware())

	// Session cart, optional identity, then CSRF for cookie-driven writes
	r.Use(mw.SessionMiddleware)
	r.Use(mw.OptionalAuth)
	r.Use(mw.CSRFMiddleware())

	// Register all routes
	NewRouterManager(
		products.NewProductRoutesManager(standardLogger, cfg.Shop, sm.CatalogService, sm.ReviewService, mw),
		cart.NewCartRoutesManager(standardLogger, cfg.Shop, sm.CartService),
		orders.NewOrderRoutesManager(standardLogger, cfg.Shop, sm.CartService, sm.CheckoutService, sm.OrderService, mw),
		wishlist.NewWishlistRoutesManager(standardLogger, sm.WishlistService, mw),
		admin.NewAdminRoutesManager(standardLogger, sm.CatalogService, sm.OrderService, mw),
		health.NewHealthRoutesManager(sm.HealthService),
		debug.NewDebugRoutesManager(standardLogger, sm.AuthService),
	).RegisterRoutes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		gecho.NotFound(w,
			gecho.Send(),
		)
	})

	return r
}
