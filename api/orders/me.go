package orders

import (
	"bengaliboutique_server/api/middleware"
	"bengaliboutique_server/handling"
	"bengaliboutique_server/lib"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// GetConfirmation returns one of the caller's orders. Other users' orders are reported as not found.
func (orm *OrderRoutesManager) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	orderID, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleError(err, "error.order.notFound", orm.logger, w)
		return
	}

	order, err := orm.orderService.Confirmation(r.Context(), claims, orderID)
	if err != nil {
		handling.HandleError(err, "error.order.notFound", orm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.orderFetched"),
		gecho.WithData(map[string]any{
			"order": order,
			"flash": lib.PopFlash(orm.cfg.FlashCookie, w, r),
		}),
		gecho.Send(),
	)
}

// GetMyOrders returns all orders for the authenticated user, newest first
func (orm *OrderRoutesManager) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	orders, err := orm.orderService.History(r.Context(), claims)
	if err != nil {
		handling.HandleError(err, "error.order.fetchingOrders", orm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.ordersFetched"),
		gecho.WithData(map[string]any{
			"orders": orders,
			"count":  len(orders),
		}),
		gecho.Send(),
	)
}
