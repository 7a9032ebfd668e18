package admin

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AdminRoutesManager struct {
	logger         *gecho.Logger
	catalogService *services.CatalogService
	orderService   *services.OrderService
	mw             *middleware.Middleware
}

func NewAdminRoutesManager(
	logger *gecho.Logger,
	catalogService *services.CatalogService,
	orderService *services.OrderService,
	mw *middleware.Middleware,
) *AdminRoutesManager {
	return &AdminRoutesManager{
		logger:         logger,
		catalogService: catalogService,
		orderService:   orderService,
		mw:             mw,
	}
}

func (ar *AdminRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(ar.mw.UserAuthMiddleware)
		r.Use(ar.mw.AdminAuthMiddleware)

		r.Get("/orders", ar.ListOrders)

		r.Post("/products/{id}/stock", ar.RestockProduct)
		r.Post("/variants/{id}/stock", ar.RestockVariant)
	})
}
