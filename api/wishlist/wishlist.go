package wishlist

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/handling"
	"bengaliboutique_server/lib"
	"net/http"

	"github.com/MonkyMars/gecho"
)

func (wrm *WishlistRoutesManager) GetWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	items, err := wrm.wishlistService.List(r.Context(), claims)
	if err != nil {
		handling.HandleError(err, "error.wishlist.failedToFetch", wrm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"items": items,
			"count": len(items),
		}),
		gecho.Send(),
	)
}

// AddToWishlist is idempotent: adding a listed product succeeds without a second row.
func (wrm *WishlistRoutesManager) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	productID, err := handling.ParseUUIDParam(r, "productID")
	if err == nil {
		_, err = wrm.wishlistService.Add(r.Context(), claims, productID)
	}
	wrm.respond(w, r, err)
}

func (wrm *WishlistRoutesManager) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	productID, err := handling.ParseUUIDParam(r, "productID")
	if err == nil {
		err = wrm.wishlistService.Remove(r.Context(), claims, productID)
	}
	wrm.respond(w, r, err)
}

func (wrm *WishlistRoutesManager) respond(w http.ResponseWriter, r *http.Request, err error) {
	if lib.IsAJAX(r) {
		if err != nil {
			handling.WriteAJAXError(err, wrm.logger, w)
			return
		}
		handling.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	if err != nil {
		handling.HandleError(err, "error.wishlist.updateFailed", wrm.logger, w)
		return
	}
	http.Redirect(w, r, "/wishlist", http.StatusSeeOther)
}
