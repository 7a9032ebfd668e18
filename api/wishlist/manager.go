package wishlist

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type WishlistRoutesManager struct {
	logger          *gecho.Logger
	wishlistService *services.WishlistService
	mw              *middleware.Middleware
}

func NewWishlistRoutesManager(logger *gecho.Logger, wishlistService *services.WishlistService, mw *middleware.Middleware) *WishlistRoutesManager {
	return &WishlistRoutesManager{
		logger:          logger,
		wishlistService: wishlistService,
		mw:              mw,
	}
}

func (wrm *WishlistRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/wishlist", func(r chi.Router) {
		r.Use(wrm.mw.UserAuthMiddleware)
		r.Get("/", wrm.GetWishlist)
		r.Post("/add/{productID}", wrm.AddToWishlist)
		r.Post("/remove/{productID}", wrm.RemoveFromWishlist)
	})
}
