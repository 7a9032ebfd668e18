package products

import (
	"bengaliboutique_server/handling"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// Home handles GET / with featured products, categories and the latest reviews
func (prm *ProductRoutesManager) Home(w http.ResponseWriter, r *http.Request) {
	home, err := prm.catalogService.Home(r.Context())
	if err != nil {
		handling.HandleError(err, "error.products.failedToFetchHome", prm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(home),
		gecho.Send(),
	)
}

func (prm *ProductRoutesManager) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := prm.catalogService.Categories(r.Context())
	if err != nil {
		handling.HandleError(err, "error.categories.failedToFetch", prm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"categories": categories,
			"count":      len(categories),
		}),
		gecho.Send(),
	)
}

// SearchProducts handles GET /products with filtering, sorting and pagination
func (prm *ProductRoutesManager) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query, err := handling.ParseCatalogQuery(r)
	if err != nil {
		handling.HandleError(err, "error.invalidQueryParameters", prm.logger, w)
		return
	}

	prm.logger.Debug("Searching products",
		gecho.Field("category", query.CategorySlug),
		gecho.Field("sort", query.Sort),
		gecho.Field("page", query.Page),
	)

	page, err := prm.catalogService.Search(r.Context(), query)
	if err != nil {
		handling.HandleError(err, "error.products.failedToFetch", prm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"products": page.Products,
			"category": page.Category,
			"filters":  page.Filters,
			"pagination": map[string]any{
				"page":        page.Page,
				"per_page":    page.PageSize,
				"total":       page.Total,
				"total_pages": page.TotalPages,
			},
		}),
		gecho.Send(),
	)
}

// FilterProducts handles GET /products/filter, the unpaginated AJAX listing
func (prm *ProductRoutesManager) FilterProducts(w http.ResponseWriter, r *http.Request) {
	query, err := handling.ParseCatalogQuery(r)
	if err != nil {
		handling.WriteAJAXError(err, prm.logger, w)
		return
	}

	summaries, err := prm.catalogService.Filter(r.Context(), query)
	if err != nil {
		handling.WriteAJAXError(err, prm.logger, w)
		return
	}

	handling.WriteJSON(w, http.StatusOK, map[string]any{"products": summaries})
}

// FetchProductBySlug handles GET /products/{slug} with variants and reviews
func (prm *ProductRoutesManager) FetchProductBySlug(w http.ResponseWriter, r *http.Request) {
	detail, err := prm.catalogService.ProductDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handling.HandleError(err, "error.products.notFound", prm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(detail),
		gecho.Send(),
	)
}
