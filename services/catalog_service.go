package services

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"fmt"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogQuery is a storefront listing request. Empty fields do not filter.
type CatalogQuery struct {
	CategorySlug string           `json:"category,omitempty"`
	Query        string           `json:"q,omitempty"`
	Size         string           `json:"size,omitempty"`
	PriceMin     *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax     *decimal.Decimal `json:"price_max,omitempty"`
	Sort         string           `json:"sort"`
	Page         int              `json:"page"`
}

type CatalogPage struct {
	Products   []tables.Product `json:"products"`
	Category   *tables.Category `json:"category,omitempty"`
	Filters    CatalogQuery     `json:"filters"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

// ProductSummary is the compact listing shape returned to AJAX filters.
type ProductSummary struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	Discount      int                 `json:"discount"`
	Image         string              `json:"image"`
}

type HomePage struct {
	Featured      []tables.Product  `json:"featured"`
	Categories    []tables.Category `json:"categories"`
	LatestReviews []tables.Review   `json:"latest_reviews"`
}

type ProductDetail struct {
	Product       *tables.Product `json:"product"`
	Reviews       []tables.Review `json:"reviews"`
	AverageRating *float64        `json:"average_rating"`
}

type CatalogService struct {
	logger  *gecho.Logger
	cfg     *structs.ShopConfig
	catalog repository.CatalogRepository
	reviews repository.ReviewRepository
	cache   ProductCache
}

func NewCatalogService(logger *gecho.Logger, cfg *structs.ShopConfig, catalog repository.CatalogRepository, reviews repository.ReviewRepository, cache ProductCache) *CatalogService {
	return &CatalogService{
		logger:  logger,
		cfg:     cfg,
		catalog: catalog,
		reviews: reviews,
		cache:   cache,
	}
}

func normalizeSort(sort string) string {
	switch sort {
	case repository.SortPriceAsc, repository.SortPriceDesc, repository.SortNewest, repository.SortRating:
		return sort
	default:
		return repository.SortName
	}
}

// filter resolves the category slug and builds the repository filter. Unknown categories are lib.ErrNotFound.
func (cs *CatalogService) filter(ctx context.Context, q *CatalogQuery) (repository.ProductFilter, *tables.Category, error) {
	q.Sort = normalizeSort(q.Sort)
	q.Query = strings.TrimSpace(q.Query)
	q.Size = strings.TrimSpace(q.Size)

	filter := repository.ProductFilter{
		Query:    q.Query,
		Size:     q.Size,
		PriceMin: q.PriceMin,
		PriceMax: q.PriceMax,
		Sort:     q.Sort,
	}

	if q.CategorySlug == "" {
		return filter, nil, nil
	}
	category, err := cs.catalog.CategoryBySlug(ctx, q.CategorySlug)
	if err != nil {
		return filter, nil, fmt.Errorf("category %q: %w", q.CategorySlug, err)
	}
	filter.CategoryID = &category.ID
	return filter, category, nil
}

// Search returns one page of the filtered, sorted listing.
func (cs *CatalogService) Search(ctx context.Context, q CatalogQuery) (*CatalogPage, error) {
	filter, category, err := cs.filter(ctx, &q)
	if err != nil {
		return nil, err
	}
	if q.Page < 1 {
		q.Page = 1
	}

	products, total, err := cs.catalog.SearchProducts(ctx, filter, q.Page, cs.cfg.PageSize)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if cs.cfg.PageSize > 0 {
		totalPages = (total + cs.cfg.PageSize - 1) / cs.cfg.PageSize
	}

	return &CatalogPage{
		Products:   products,
		Category:   category,
		Filters:    q,
		Page:       q.Page,
		PageSize:   cs.cfg.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Filter returns every match as compact summaries.
func (cs *CatalogService) Filter(ctx context.Context, q CatalogQuery) ([]ProductSummary, error) {
	filter, _, err := cs.filter(ctx, &q)
	if err != nil {
		return nil, err
	}

	products, _, err := cs.catalog.SearchProducts(ctx, filter, 1, 0)
	if err != nil {
		return nil, err
	}

	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, ProductSummary{
			ID:            p.ID,
			Name:          p.Name,
			Slug:          p.Slug,
			Description:   p.Description,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Discount:      p.Discount,
			Image:         p.Image,
		})
	}
	return out, nil
}

func (cs *CatalogService) Home(ctx context.Context) (*HomePage, error) {
	featured, err := cs.catalog.FeaturedProducts(ctx, cs.cfg.FeaturedCount)
	if err != nil {
		return nil, err
	}
	categories, err := cs.catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := cs.reviews.LatestReviews(ctx, cs.cfg.LatestReviews)
	if err != nil {
		return nil, err
	}

	return &HomePage{
		Featured:      featured,
		Categories:    categories,
		LatestReviews: latest,
	}, nil
}

func (cs *CatalogService) Categories(ctx context.Context) ([]tables.Category, error) {
	return cs.catalog.Categories(ctx)
}

// Product loads a product with its category and variants, going through the cache.
func (cs *CatalogService) Product(ctx context.Context, slug string) (*tables.Product, error) {
	if cs.cache != nil {
		cached, err := cs.cache.GetProduct(ctx, slug)
		if err != nil {
			cs.logger.Warn("Product cache read failed", gecho.Field("slug", slug), gecho.Field("error", err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	product, err := cs.catalog.ProductBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", slug, err)
	}

	if cs.cache != nil {
		if err := cs.cache.SetProduct(ctx, product); err != nil {
			cs.logger.Warn("Product cache write failed", gecho.Field("slug", slug), gecho.Field("error", err))
		}
	}
	return product, nil
}

// ProductDetail returns the product page: product, its reviews newest first and the mean rating.
func (cs *CatalogService) ProductDetail(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := cs.Product(ctx, slug)
	if err != nil {
		return nil, err
	}

	reviews, err := cs.reviews.ReviewsForProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{
		Product:       product,
		Reviews:       reviews,
		AverageRating: averageRating(reviews),
	}, nil
}

func averageRating(reviews []tables.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return &avg
}

// SetProductStock overwrites a product's stock and evicts its cached detail.
func (cs *CatalogService) SetProductStock(ctx context.Context, productID uuid.UUID, stock int) (*tables.Product, error) {
	if stock < 0 {
		return nil, negativeStockError()
	}
	if err := cs.catalog.SetProductStock(ctx, productID, stock); err != nil {
		return nil, err
	}

	product, err := cs.catalog.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	cs.evict(ctx, product.Slug)

	cs.logger.Info("Product restocked", gecho.Field("product_id", productID), gecho.Field("stock", stock))
	return product, nil
}

// SetVariantStock overwrites a variant's stock and evicts its product's cached detail.
func (cs *CatalogService) SetVariantStock(ctx context.Context, variantID uuid.UUID, stock int) (*tables.ProductVariant, error) {
	if stock < 0 {
		return nil, negativeStockError()
	}
	variant, err := cs.catalog.SetVariantStock(ctx, variantID, stock)
	if err != nil {
		return nil, err
	}

	if product, err := cs.catalog.ProductByID(ctx, variant.ProductID); err == nil {
		cs.evict(ctx, product.Slug)
	}

	cs.logger.Info("Variant restocked", gecho.Field("variant_id", variantID), gecho.Field("stock", stock))
	return variant, nil
}

func (cs *CatalogService) evict(ctx context.Context, slug string) {
	if cs.cache == nil {
		return
	}
	if err := cs.cache.InvalidateProducts(ctx, slug); err != nil {
		cs.logger.Warn("Product cache eviction failed", gecho.Field("slug", slug), gecho.Field("error", err))
	}
}

func negativeStockError() error {
	return lib.NewValidationError("stock", "must be greater than or equal to 0")
}
