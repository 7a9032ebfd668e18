package admin

import (
	"bengaliboutique_server/handling"
	"net/http"
	"strconv"

	"github.com/MonkyMars/gecho"
)

// ListOrders returns a paginated list of all orders, newest first
func (ar *AdminRoutesManager) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := ar.orderService.AdminList(r.Context(), page)
	if err != nil {
		ar.logger.Error("Failed to get orders",
			gecho.Field("error", err),
			gecho.Field("page", page))
		handling.HandleError(err, "error.order.fetchingOrders", ar.logger, w)
		return
	}

	totalPages := 0
	if result.PageSize > 0 {
		totalPages = (result.Total + result.PageSize - 1) / result.PageSize
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.ordersFetched"),
		gecho.WithData(map[string]any{
			"orders": result.Orders,
			"pagination": map[string]any{
				"page":        result.Page,
				"page_size":   result.PageSize,
				"total":       result.Total,
				"total_pages": totalPages,
			},
		}),
		gecho.Send(),
	)
}
