package cart

import (
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type CartRoutesManager struct {
	logger      *gecho.Logger
	cfg         *structs.ShopConfig
	cartService *services.CartService
}

func NewCartRoutesManager(logger *gecho.Logger, cfg *structs.ShopConfig, cartService *services.CartService) *CartRoutesManager {
	return &CartRoutesManager{
		logger:      logger,
		cfg:         cfg,
		cartService: cartService,
	}
}

func (crm *CartRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", crm.GetCart)
		r.Post("/add/{productID}", crm.AddToCart)
		r.Post("/remove/{productID}", crm.RemoveFromCart)
		r.Post("/update", crm.UpdateCart)
	})
}
