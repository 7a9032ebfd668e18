package database

import (
	"bengaliboutique_server/structs/tables"
	"context"
	"fmt"
)

// CreateSchema creates missing tables and indexes. It never alters existing tables.
func (db *DB) CreateSchema(ctx context.Context) error {
	models := []any{
		(*tables.Category)(nil),
		(*tables.Product)(nil),
		(*tables.ProductVariant)(nil),
		(*tables.Order)(nil),
		(*tables.OrderItem)(nil),
		(*tables.Review)(nil),
		(*tables.Wishlist)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS products_category_id_idx ON products (category_id)",
		"CREATE INDEX IF NOT EXISTS product_variants_product_id_idx ON product_variants (product_id)",
		"CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items (order_id)",
		"CREATE INDEX IF NOT EXISTS orders_user_id_created_at_idx ON orders (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS reviews_product_id_idx ON reviews (product_id)",
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
