package cart

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/handling"
	"bengaliboutique_server/lib"
	"bengaliboutique_server/structs"
	"errors"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type cartUpdateRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  *int       `json:"quantity" validate:"required"`
}

// cartKeyFromRequest builds the cart key from the path and the optional variant_id form or query value.
func cartKeyFromRequest(r *http.Request) (structs.CartKey, error) {
	productID, err := handling.ParseUUIDParam(r, "productID")
	if err != nil {
		return structs.CartKey{}, err
	}

	raw := r.FormValue("variant_id")
	if raw == "" {
		return structs.NewCartKey(productID, nil), nil
	}
	variantID, err := uuid.Parse(raw)
	if err != nil {
		return structs.CartKey{}, lib.ErrNotFound
	}
	return structs.NewCartKey(productID, &variantID), nil
}

// GetCart handles GET /cart with priced lines and the pending flash message
func (crm *CartRoutesManager) GetCart(w http.ResponseWriter, r *http.Request) {
	snapshot, err := crm.cartService.Snapshot(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handling.HandleError(err, "error.cart.failedToFetch", crm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"cart":  snapshot,
			"flash": lib.PopFlash(crm.cfg.FlashCookie, w, r),
		}),
		gecho.Send(),
	)
}

// AddToCart handles POST /cart/add/{productID}
func (crm *CartRoutesManager) AddToCart(w http.ResponseWriter, r *http.Request) {
	key, err := cartKeyFromRequest(r)
	if err != nil {
		crm.respond(w, r, nil, err)
		return
	}

	cart, err := crm.cartService.Add(r.Context(), middleware.GetSessionID(r.Context()), key)
	crm.respond(w, r, cart, err)
}

// RemoveFromCart handles POST /cart/remove/{productID}
func (crm *CartRoutesManager) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	key, err := cartKeyFromRequest(r)
	if err != nil {
		crm.respond(w, r, nil, err)
		return
	}

	cart, err := crm.cartService.Remove(r.Context(), middleware.GetSessionID(r.Context()), key)
	crm.respond(w, r, cart, err)
}

// UpdateCart handles POST /cart/update with a JSON {product_id, variant_id?, quantity} body
func (crm *CartRoutesManager) UpdateCart(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[cartUpdateRequest](r)
	if err != nil {
		handling.WriteAJAXError(err, crm.logger, w)
		return
	}

	key := structs.NewCartKey(body.ProductID, body.VariantID)
	cart, err := crm.cartService.SetQuantity(r.Context(), middleware.GetSessionID(r.Context()), key, *body.Quantity)
	if err != nil {
		handling.WriteAJAXError(err, crm.logger, w)
		return
	}

	handling.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"cart_total": cart.ItemCount(),
	})
}

// respond answers AJAX callers with {success, error?, cart_total?} and
// redirects form posts back to the cart, carrying stock errors as a flash message.
func (crm *CartRoutesManager) respond(w http.ResponseWriter, r *http.Request, cart structs.Cart, err error) {
	if lib.IsAJAX(r) {
		if err != nil {
			handling.WriteAJAXError(err, crm.logger, w)
			return
		}
		handling.WriteJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"cart_total": cart.ItemCount(),
		})
		return
	}

	if err != nil {
		if !errors.Is(err, lib.ErrOutOfStock) && !errors.Is(err, lib.ErrExceedsStock) {
			handling.HandleError(err, "error.cart.updateFailed", crm.logger, w)
			return
		}
		lib.SetFlash(crm.cfg.FlashCookie, handling.AJAXMessage(err), w)
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
