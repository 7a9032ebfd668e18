package services_test

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs/tables"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(products []tables.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestCatalogSearchDefaultsToNameOrder(t *testing.T) {
	f := newFixture(t)

	page, err := f.catalog.Search(context.Background(), services.CatalogQuery{Sort: "bogus"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Cotton Kurta", "Jamdani Dupatta", "Silk Saree"}, names(page.Products))
	assert.Equal(t, repository.SortName, page.Filters.Sort)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestCatalogSearchFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.catalog.Search(ctx, services.CatalogQuery{CategorySlug: "women", Sort: repository.SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jamdani Dupatta", "Silk Saree"}, names(page.Products))
	require.NotNil(t, page.Category)
	assert.Equal(t, "Women", page.Category.Name)

	page, err = f.catalog.Search(ctx, services.CatalogQuery{Query: "  SILK "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Silk Saree"}, names(page.Products))

	page, err = f.catalog.Search(ctx, services.CatalogQuery{Query: "everyday"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cotton Kurta"}, names(page.Products), "description matches too")

	lo, hi := decimal.NewFromInt(700), decimal.NewFromInt(1000)
	page, err = f.catalog.Search(ctx, services.CatalogQuery{PriceMin: &lo, PriceMax: &hi})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cotton Kurta"}, names(page.Products))

	page, err = f.catalog.Search(ctx, services.CatalogQuery{Size: "m"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Silk Saree"}, names(page.Products))
}

func TestCatalogSearchUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.Search(context.Background(), services.CatalogQuery{CategorySlug: "unknown"})
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestCatalogSearchSortOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.catalog.Search(ctx, services.CatalogQuery{Sort: repository.SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Silk Saree", "Cotton Kurta", "Jamdani Dupatta"}, names(page.Products))

	page, err = f.catalog.Search(ctx, services.CatalogQuery{Sort: repository.SortNewest})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jamdani Dupatta", "Cotton Kurta", "Silk Saree"}, names(page.Products))

	_, err = f.reviews.AddReview(ctx, f.user, f.kurta.Slug, services.ReviewInput{Rating: 5, Text: "Great"})
	require.NoError(t, err)
	_, err = f.reviews.AddReview(ctx, f.user, f.saree.Slug, services.ReviewInput{Rating: 3, Text: "Fine"})
	require.NoError(t, err)

	page, err = f.catalog.Search(ctx, services.CatalogQuery{Sort: repository.SortRating})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cotton Kurta", "Silk Saree", "Jamdani Dupatta"}, names(page.Products), "unrated products sort last")
}

func TestCatalogSearchPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := range 13 {
		f.store.AddProduct(tables.Product{
			Name:       "Gamcha " + string(rune('A'+i)),
			Price:      decimal.NewFromInt(200),
			Stock:      1,
			CategoryID: f.men.ID,
		})
	}

	page, err := f.catalog.Search(ctx, services.CatalogQuery{CategorySlug: "men", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 14, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Products, 2)

	page, err = f.catalog.Search(ctx, services.CatalogQuery{CategorySlug: "men", Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
}

func TestCatalogFilterReturnsAllSummaries(t *testing.T) {
	f := newFixture(t)

	summaries, err := f.catalog.Filter(context.Background(), services.CatalogQuery{CategorySlug: "women"})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Jamdani Dupatta", summaries[0].Name)
	assert.Equal(t, "silk-saree", summaries[1].Slug)
	assert.Equal(t, 20, summaries[1].Discount)
	assert.True(t, summaries[1].OriginalPrice.Valid)
}

func TestCatalogHome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, text := range []string{"one", "two", "three", "four"} {
		_, err := f.reviews.AddReview(ctx, f.user, f.kurta.Slug, services.ReviewInput{Rating: 4, Text: text})
		require.NoError(t, err)
	}

	home, err := f.catalog.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, home.Featured, 3)
	assert.Equal(t, "Jamdani Dupatta", home.Featured[0].Name)
	assert.Len(t, home.Categories, 2)
	require.Len(t, home.LatestReviews, 3)
	assert.Equal(t, "four", home.LatestReviews[0].Text)
}

func TestCatalogProductDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.reviews.AddReview(ctx, f.user, f.saree.Slug, services.ReviewInput{Rating: 5, Text: "Lovely"})
	require.NoError(t, err)
	_, err = f.reviews.AddReview(ctx, f.user, f.saree.Slug, services.ReviewInput{Rating: 2, Text: "Faded"})
	require.NoError(t, err)

	detail, err := f.catalog.ProductDetail(ctx, "silk-saree")
	require.NoError(t, err)
	assert.Equal(t, "Silk Saree", detail.Product.Name)
	require.NotNil(t, detail.Product.Category)
	assert.Equal(t, "women", detail.Product.Category.Slug)
	require.Len(t, detail.Product.Variants, 2)
	assert.Equal(t, "L", detail.Product.Variants[0].Size)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "Faded", detail.Reviews[0].Text)
	require.NotNil(t, detail.AverageRating)
	assert.InDelta(t, 3.5, *detail.AverageRating, 0.001)

	_, err = f.catalog.ProductDetail(ctx, "nope")
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestCatalogProductDetailUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.ProductDetail(ctx, "cotton-kurta")
	require.NoError(t, err)
	_, err = f.catalog.ProductDetail(ctx, "cotton-kurta")
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Hits)
}

func TestCatalogRestock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Product(ctx, f.saree.Slug)
	require.NoError(t, err)

	product, err := f.catalog.SetProductStock(ctx, f.soldOut.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, product.Stock)
	assert.Equal(t, 7, f.store.ProductStock(f.soldOut.ID))

	variant, err := f.catalog.SetVariantStock(ctx, f.blue.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, variant.Stock)
	assert.False(t, f.cache.Has(f.saree.Slug), "variant restock evicts the product")

	_, err = f.catalog.SetProductStock(ctx, f.kurta.ID, -1)
	assert.ErrorIs(t, err, lib.ErrValidationFailed)

	_, err = f.catalog.SetVariantStock(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}
