package orders

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type OrderRoutesManager struct {
	logger          *gecho.Logger
	cfg             *structs.ShopConfig
	cartService     *services.CartService
	checkoutService *services.CheckoutService
	orderService    *services.OrderService
	mw              *middleware.Middleware
}

func NewOrderRoutesManager(
	logger *gecho.Logger,
	cfg *structs.ShopConfig,
	cartService *services.CartService,
	checkoutService *services.CheckoutService,
	orderService *services.OrderService,
	mw *middleware.Middleware,
) *OrderRoutesManager {
	return &OrderRoutesManager{
		logger:          logger,
		cfg:             cfg,
		cartService:     cartService,
		checkoutService: checkoutService,
		orderService:    orderService,
		mw:              mw,
	}
}

func (orm *OrderRoutesManager) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(orm.mw.UserAuthMiddleware)

		r.Get("/checkout", orm.CheckoutPreview)
		r.Post("/checkout", orm.Checkout)
		r.Get("/orders/{id}/confirmation", orm.GetConfirmation)
		r.Get("/profile/orders", orm.GetMyOrders)
	})
}
