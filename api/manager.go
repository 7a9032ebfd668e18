package api

import (
	"bengaliboutique_server/api/admin"
	"bengaliboutique_server/api/cart"
	"bengaliboutique_server/api/debug"
	"bengaliboutique_server/api/health"
	"bengaliboutique_server/api/orders"
	"bengaliboutique_server/api/products"
	"bengaliboutique_server/api/wishlist"

	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	productRoutes  *products.ProductRoutesManager
	cartRoutes     *cart.CartRoutesManager
	orderRoutes    *orders.OrderRoutesManager
	wishlistRoutes *wishlist.WishlistRoutesManager
	adminRoutes    *admin.AdminRoutesManager
	healthRoutes   *health.HealthRoutesManager
	debugRoutes    *debug.DebugRoutesManager
}

func NewRouterManager(
	productRoutes *products.ProductRoutesManager,
	cartRoutes *cart.CartRoutesManager,
	orderRoutes *orders.OrderRoutesManager,
	wishlistRoutes *wishlist.WishlistRoutesManager,
	adminRoutes *admin.AdminRoutesManager,
	healthRoutes *health.HealthRoutesManager,
	debugRoutes *debug.DebugRoutesManager,
) *routerManager {
	return &routerManager{
		productRoutes:  productRoutes,
		cartRoutes:     cartRoutes,
		orderRoutes:    orderRoutes,
		wishlistRoutes: wishlistRoutes,
		adminRoutes:    adminRoutes,
		healthRoutes:   healthRoutes,
		debugRoutes:    debugRoutes,
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.productRoutes.RegisterRoutes(r)
	rm.cartRoutes.RegisterRoutes(r)
	rm.orderRoutes.RegisterRoutes(r)
	rm.wishlistRoutes.RegisterRoutes(r)
	rm.adminRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
	rm.debugRoutes.RegisterRoutes(r)
}
