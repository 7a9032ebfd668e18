package database

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/structs/tables"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type SeedProduct struct {
	Product      tables.Product
	CategorySlug string
	Variants     []tables.ProductVariant
}

type SeedData struct {
	Categories []tables.Category
	Products   []SeedProduct
}

// SeedReport counts the rows a Seed call inserted.
type SeedReport struct {
	Categories int
	Products   int
	Variants   int
}

// SampleCatalog is the storefront's demo catalog.
func SampleCatalog() SeedData {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

	return SeedData{
		Categories: []tables.Category{
			{Name: "Women", Slug: "women", Description: "Women’s clothing"},
			{Name: "Men", Slug: "men", Description: "Men’s clothing"},
			{Name: "Kids", Slug: "kids", Description: "Kids’ clothing"},
			{Name: "Accessories", Slug: "accessories", Description: "Fashion accessories"},
		},
		Products: []SeedProduct{
			{
				CategorySlug: "women",
				Product: tables.Product{
					Name:          "Silk Saree",
					Slug:          "silk-saree",
					Description:   "Elegant silk saree for special occasions",
					Price:         price(1500),
					OriginalPrice: decimal.NewNullDecimal(price(1800)),
					Discount:      20,
					Stock:         10,
					Size:          "M",
				},
				Variants: []tables.ProductVariant{
					{Size: "M", Color: "Red", Stock: 5, Price: decimal.NewNullDecimal(price(1500))},
					{Size: "L", Color: "Blue", Stock: 3, Price: decimal.NewNullDecimal(price(1600))},
				},
			},
			{
				CategorySlug: "men",
				Product: tables.Product{
					Name:        "Cotton Kurta",
					Slug:        "cotton-kurta",
					Description: "Comfortable kurta for daily wear",
					Price:       price(800),
					Stock:       15,
					Size:        "L",
				},
			},
			{
				CategorySlug: "kids",
				Product: tables.Product{
					Name:        "Kids Lehenga",
					Slug:        "kids-lehenga",
					Description: "Festive lehenga for kids",
					Price:       price(1200),
					Stock:       8,
					Size:        "S",
				},
			},
		},
	}
}

// firstOrInsert returns the row matched by find, inserting row when there is none.
func firstOrInsert[T any](ctx context.Context, conn bun.IDB, find *QueryBuilder[T], row *T) (*T, bool, error) {
	existing, err := find.First(ctx)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, lib.ErrNotFound) {
		return nil, false, err
	}
	created, err := Query[T](conn).Insert(ctx, row)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// Seed inserts data inside one transaction, skipping rows that already exist.
func Seed(ctx context.Context, db *DB, data SeedData) (SeedReport, error) {
	var report SeedReport

	err := db.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		report = SeedReport{}
		categories := make(map[string]*tables.Category, len(data.Categories))

		for i := range data.Categories {
			row := data.Categories[i]
			category, created, err := firstOrInsert(ctx, tx, Query[tables.Category](tx).Where("c.slug", row.Slug), &row)
			if err != nil {
				return fmt.Errorf("category %s: %w", row.Slug, err)
			}
			if created {
				report.Categories++
			}
			categories[category.Slug] = category
		}

		for _, seed := range data.Products {
			category, ok := categories[seed.CategorySlug]
			if !ok {
				return fmt.Errorf("product %s: unknown category %s", seed.Product.Slug, seed.CategorySlug)
			}

			row := seed.Product
			row.CategoryID = category.ID
			product, created, err := firstOrInsert(ctx, tx, Query[tables.Product](tx).Where("p.slug", row.Slug), &row)
			if err != nil {
				return fmt.Errorf("product %s: %w", row.Slug, err)
			}
			if created {
				report.Products++
			}

			for _, variant := range seed.Variants {
				variant.ProductID = product.ID
				find := Query[tables.ProductVariant](tx).
					Where("pv.product_id", product.ID).
					Where("pv.size", variant.Size).
					Where("pv.color", variant.Color)
				if _, created, err := firstOrInsert(ctx, tx, find, &variant); err != nil {
					return fmt.Errorf("variant %s/%s of %s: %w", variant.Size, variant.Color, row.Slug, err)
				} else if created {
					report.Variants++
				}
			}
		}
		return nil
	})

	return report, err
}
