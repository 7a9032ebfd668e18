package admin

import (
	"bengaliboutique_server/handling"
	"bengaliboutique_server/lib"
	"net/http"

	"github.com/MonkyMars/gecho"
)

type restockRequest struct {
	Stock *int `json:"stock" validate:"required"`
}

// RestockProduct handles POST /admin/products/{id}/stock
func (ar *AdminRoutesManager) RestockProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleError(err, "error.products.notFound", ar.logger, w)
		return
	}

	body, err := lib.ExtractAndValidateBody[restockRequest](r)
	if err != nil {
		handling.HandleError(err, "error.products.invalidRequestBody", ar.logger, w)
		return
	}

	product, err := ar.catalogService.SetProductStock(r.Context(), productID, *body.Stock)
	if err != nil {
		handling.HandleError(err, "error.products.failedToRestock", ar.logger, w)
		return
	}

	ar.logger.Info("Product restocked",
		gecho.Field("product_id", product.ID),
		gecho.Field("stock", product.Stock),
	)

	gecho.Success(w,
		gecho.WithMessage("success.products.restocked"),
		gecho.WithData(product),
		gecho.Send(),
	)
}

// RestockVariant handles POST /admin/variants/{id}/stock
func (ar *AdminRoutesManager) RestockVariant(w http.ResponseWriter, r *http.Request) {
	variantID, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleError(err, "error.variants.notFound", ar.logger, w)
		return
	}

	body, err := lib.ExtractAndValidateBody[restockRequest](r)
	if err != nil {
		handling.HandleError(err, "error.variants.invalidRequestBody", ar.logger, w)
		return
	}

	variant, err := ar.catalogService.SetVariantStock(r.Context(), variantID, *body.Stock)
	if err != nil {
		handling.HandleError(err, "error.variants.failedToRestock", ar.logger, w)
		return
	}

	ar.logger.Info("Variant restocked",
		gecho.Field("variant_id", variant.ID),
		gecho.Field("stock", variant.Stock),
	)

	gecho.Success(w,
		gecho.WithMessage("success.variants.restocked"),
		gecho.WithData(variant),
		gecho.Send(),
	)
}
