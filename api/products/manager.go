package products

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ProductRoutesManager struct {
	logger         *gecho.Logger
	cfg            *structs.ShopConfig
	catalogService *services.CatalogService
	reviewService  *services.ReviewService
	mw             *middleware.Middleware
}

func NewProductRoutesManager(
	logger *gecho.Logger,
	cfg *structs.ShopConfig,
	catalogService *services.CatalogService,
	reviewService *services.ReviewService,
	mw *middleware.Middleware,
) *ProductRoutesManager {
	return &ProductRoutesManager{
		logger:         logger,
		cfg:            cfg,
		catalogService: catalogService,
		reviewService:  reviewService,
		mw:             mw,
	}
}

func (prm *ProductRoutesManager) RegisterRoutes(r chi.Router) {
	r.Get("/", prm.Home)
	r.Get("/categories", prm.ListCategories)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", prm.SearchProducts)
		r.Get("/filter", prm.FilterProducts)
		r.Get("/{slug}", prm.FetchProductBySlug)

		r.With(prm.mw.UserAuthMiddleware).Post("/{slug}/reviews", prm.AddReview)
	})
}
