package orders

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/handling"
	"bengaliboutique_server/lib"
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs/tables"
	"errors"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// CheckoutPreview handles GET /checkout with the priced cart, shipping fee and grand total
func (orm *OrderRoutesManager) CheckoutPreview(w http.ResponseWriter, r *http.Request) {
	snapshot, err := orm.cartService.Snapshot(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handling.HandleError(err, "error.checkout.failedToPreview", orm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"cart":         snapshot,
			"shipping_fee": orm.cfg.ShippingFee,
			"grand_total":  snapshot.Total.Add(orm.cfg.ShippingFee),
			"currency":     orm.cfg.CurrencySymbol,
			"flash":        lib.PopFlash(orm.cfg.FlashCookie, w, r),
		}),
		gecho.Send(),
	)
}

// readCheckout accepts the checkout form (shipping_address, billing_address, payment) or a JSON body.
func readCheckout(r *http.Request) (services.CheckoutRequest, error) {
	if handling.IsJSONBody(r) {
		body, err := lib.ExtractAndValidateBody[services.CheckoutRequest](r)
		if err != nil {
			return services.CheckoutRequest{}, err
		}
		return *body, nil
	}

	return services.CheckoutRequest{
		ShippingAddress: r.PostFormValue("shipping_address"),
		BillingAddress:  r.PostFormValue("billing_address"),
		PaymentMethod:   r.PostFormValue("payment"),
	}, nil
}

// Checkout handles POST /checkout
func (orm *OrderRoutesManager) Checkout(w http.ResponseWriter, r *http.Request) {
	req, err := readCheckout(r)
	if err != nil {
		orm.fail(w, r, err)
		return
	}

	claims, _ := middleware.GetClaimsFromContext(r.Context())
	req.User = claims
	req.SessionID = middleware.GetSessionID(r.Context())
	req.IdempotencyKey = lib.IdempotencyKey(r)

	order, err := orm.checkoutService.Checkout(r.Context(), req)
	if err != nil {
		var notifyErr *lib.NotificationError
		if order != nil && errors.As(err, &notifyErr) && !lib.IsAJAX(r) {
			// the order is durable; only the e-mail is missing
			lib.SetFlash(orm.cfg.FlashCookie, "Order placed, but the confirmation e-mail could not be sent", w)
			orm.redirectToConfirmation(w, r, order)
			return
		}
		orm.fail(w, r, err)
		return
	}

	if lib.IsAJAX(r) {
		handling.WriteJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"order_id": order.ID,
		})
		return
	}
	orm.redirectToConfirmation(w, r, order)
}

func (orm *OrderRoutesManager) redirectToConfirmation(w http.ResponseWriter, r *http.Request, order *tables.Order) {
	http.Redirect(w, r, "/orders/"+order.ID.String()+"/confirmation", http.StatusSeeOther)
}

// fail sends form posts back to the cart or the checkout page with a flash message.
// AJAX callers and unexpected errors get the mapped status code.
func (orm *OrderRoutesManager) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !lib.IsAJAX(r) {
		switch {
		case errors.Is(err, lib.ErrEmptyCart), errors.Is(err, lib.ErrStockChanged):
			lib.SetFlash(orm.cfg.FlashCookie, handling.AJAXMessage(err), w)
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		case errors.Is(err, lib.ErrValidationFailed):
			lib.SetFlash(orm.cfg.FlashCookie, handling.AJAXMessage(err), w)
			http.Redirect(w, r, "/checkout", http.StatusSeeOther)
			return
		}
	}

	var stockErr *lib.StockChangedError
	if errors.As(err, &stockErr) {
		orm.logger.Info("Checkout rejected, stock changed",
			gecho.Field("product", stockErr.ProductName),
			gecho.Field("requested", stockErr.Requested),
			gecho.Field("available", stockErr.Available),
		)
	}
	handling.HandleError(err, "error.checkout.failed", orm.logger, w)
}
