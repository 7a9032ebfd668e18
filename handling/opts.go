package handling

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/services"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCatalogQuery parses the storefront listing parameters.
// A missing or malformed page falls back to the first page; malformed prices are rejected.
func ParseCatalogQuery(r *http.Request) (services.CatalogQuery, error) {
	query := r.URL.Query()

	opts := services.CatalogQuery{
		CategorySlug: strings.TrimSpace(query.Get("category")),
		Query:        strings.TrimSpace(query.Get("q")),
		Size:         strings.TrimSpace(query.Get("size")),
		Sort:         strings.TrimSpace(query.Get("sort")),
		Page:         1,
	}

	if page := query.Get("page"); page != "" {
		if val, err := strconv.Atoi(page); err == nil && val > 0 {
			opts.Page = val
		}
	}

	var err error
	if opts.PriceMin, err = parsePrice(query.Get("price_min"), "price_min"); err != nil {
		return services.CatalogQuery{}, err
	}
	if opts.PriceMax, err = parsePrice(query.Get("price_max"), "price_max"); err != nil {
		return services.CatalogQuery{}, err
	}

	return opts, nil
}

func parsePrice(raw, field string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, lib.NewValidationError(field, "must be a number")
	}
	return &value, nil
}
