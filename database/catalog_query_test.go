package database

import (
	"bengaliboutique_server/config"
	"bengaliboutique_server/repository"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUnconnected(t *testing.T) *DB {
	t.Helper()
	db, err := Open(config.Load().Database, config.NewLogger(false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSearchQueryFilters(t *testing.T) {
	db := openUnconnected(t)
	categoryID := uuid.New()
	lo, hi := decimal.NewFromInt(500), decimal.NewFromInt(1500)

	sql := SearchQuery(db, repository.ProductFilter{
		CategoryID: &categoryID,
		Query:      "silk",
		Size:       "M",
		PriceMin:   &lo,
		PriceMax:   &hi,
		Sort:       repository.SortPriceDesc,
	}).String()

	assert.Contains(t, sql, "p.category_id = '"+categoryID.String()+"'")
	assert.Contains(t, sql, "(p.name ILIKE '%silk%' OR p.description ILIKE '%silk%')")
	assert.Contains(t, sql, "p.size ILIKE '%M%'")
	assert.Contains(t, sql, "p.price >= ")
	assert.Contains(t, sql, "p.price <= ")
	assert.Contains(t, sql, "ORDER BY p.price DESC, p.id ASC")
}

func TestSearchQuerySorts(t *testing.T) {
	db := openUnconnected(t)

	tests := map[string]string{
		"":                      "ORDER BY p.name ASC, p.id ASC",
		repository.SortPriceAsc: "ORDER BY p.price ASC, p.id ASC",
		repository.SortNewest:   "ORDER BY p.created_at DESC, p.id ASC",
		repository.SortRating:   "ORDER BY pr.avg_rating DESC NULLS LAST, p.id ASC",
		"bogus":                 "ORDER BY p.name ASC, p.id ASC",
	}

	for sort, want := range tests {
		sql := SearchQuery(db, repository.ProductFilter{Sort: sort}).String()
		assert.Contains(t, sql, want, sort)
		assert.NotContains(t, sql, "WHERE", sort)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% cotton`, escapeLike("100% cotton"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}
