package database

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs/tables"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type catalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a CatalogRepository backed by Postgres.
func NewCatalogRepository(db *DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ProductByID(ctx context.Context, id uuid.UUID) (*tables.Product, error) {
	return FindByID[tables.Product](ctx, r.db, id)
}

func (r *catalogRepository) ProductBySlug(ctx context.Context, slug string) (*tables.Product, error) {
	return Query[tables.Product](r.db).
		Relation("Category").
		Relation("Variants", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("pv.size ASC, pv.color ASC")
		}).
		Where("p.slug", slug).
		First(ctx)
}

func (r *catalogRepository) VariantByID(ctx context.Context, productID, variantID uuid.UUID) (*tables.ProductVariant, error) {
	return Query[tables.ProductVariant](r.db).
		Where("pv.id", variantID).
		Where("pv.product_id", productID).
		First(ctx)
}

func (r *catalogRepository) CategoryBySlug(ctx context.Context, slug string) (*tables.Category, error) {
	return Query[tables.Category](r.db).Where("c.slug", slug).First(ctx)
}

func (r *catalogRepository) Categories(ctx context.Context) ([]tables.Category, error) {
	return Query[tables.Category](r.db).OrderBy("c.name", ASC).All(ctx)
}

func (r *catalogRepository) FeaturedProducts(ctx context.Context, limit int) ([]tables.Product, error) {
	return Query[tables.Product](r.db).
		Relation("Category").
		OrderBy("p.created_at", DESC).
		Limit(limit).
		All(ctx)
}

func (r *catalogRepository) SearchProducts(ctx context.Context, filter repository.ProductFilter, page, pageSize int) ([]tables.Product, int, error) {
	query := SearchQuery(r.db, filter)

	if pageSize <= 0 {
		products, err := query.All(ctx)
		if err != nil {
			return nil, 0, err
		}
		return products, len(products), nil
	}

	result, err := Paginate(ctx, query, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return result.Data, result.Pagination.Total, nil
}

// SearchQuery builds the catalog filter and sort query.
func SearchQuery(conn bun.IDB, filter repository.ProductFilter) *QueryBuilder[tables.Product] {
	query := Query[tables.Product](conn).Relation("Category")

	if filter.CategoryID != nil {
		query = query.Where("p.category_id", *filter.CategoryID)
	}

	if term := strings.TrimSpace(filter.Query); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		query = query.Or().
			WhereOp("p.name", "ILIKE", pattern).
			WhereOp("p.description", "ILIKE", pattern).
			End()
	}

	if size := strings.TrimSpace(filter.Size); size != "" {
		query = query.WhereOp("p.size", "ILIKE", "%"+escapeLike(size)+"%")
	}

	if filter.PriceMin != nil {
		query = query.WhereOp("p.price", ">=", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.WhereOp("p.price", "<=", *filter.PriceMax)
	}

	switch filter.Sort {
	case repository.SortPriceAsc:
		query = query.OrderBy("p.price", ASC)
	case repository.SortPriceDesc:
		query = query.OrderBy("p.price", DESC)
	case repository.SortNewest:
		query = query.OrderBy("p.created_at", DESC)
	case repository.SortRating:
		query = query.
			Join("LEFT JOIN (SELECT product_id, AVG(rating) AS avg_rating FROM reviews GROUP BY product_id) AS pr ON pr.product_id = p.id").
			OrderExpr("pr.avg_rating DESC NULLS LAST")
	default:
		query = query.OrderBy("p.name", ASC)
	}

	// stable pages
	return query.OrderBy("p.id", ASC)
}

func (r *catalogRepository) SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error {
	n, err := Query[tables.Product](r.db).Where("id", productID).Update(ctx, map[string]any{"stock": stock})
	if err != nil {
		return err
	}
	if n == 0 {
		return lib.ErrNotFound
	}
	return nil
}

func (r *catalogRepository) SetVariantStock(ctx context.Context, variantID uuid.UUID, stock int) (*tables.ProductVariant, error) {
	n, err := Query[tables.ProductVariant](r.db).Where("id", variantID).Update(ctx, map[string]any{"stock": stock})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, lib.ErrNotFound
	}
	variant, err := FindByID[tables.ProductVariant](ctx, r.db, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload variant: %w", err)
	}
	return variant, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
