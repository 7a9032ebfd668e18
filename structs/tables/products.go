package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`
	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Slug          string    `bun:"slug,notnull,unique" json:"slug"`
	Description   string    `bun:"description" json:"description,omitempty"`
}

type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`
	ID            uuid.UUID           `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name          string              `bun:"name,notnull" json:"name"`
	Slug          string              `bun:"slug,notnull,unique" json:"slug"`
	Description   string              `bun:"description,notnull,default:''" json:"description"`
	Price         decimal.Decimal     `bun:"price,type:numeric(12,2),notnull" json:"price"`
	OriginalPrice decimal.NullDecimal `bun:"original_price,type:numeric(12,2)" json:"original_price"`
	Discount      int                 `bun:"discount,notnull,default:0" json:"discount"` // percent
	Stock         int                 `bun:"stock,notnull,default:0" json:"stock"`
	CategoryID    uuid.UUID           `bun:"category_id,type:uuid,notnull" json:"category_id"`
	Size          string              `bun:"size,nullzero" json:"size,omitempty"`
	Image         string              `bun:"image,nullzero" json:"image,omitempty"`
	CreatedAt     time.Time           `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Category *Category       `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	Variants []ProductVariant `bun:"rel:has-many,join:id=product_id" json:"variants,omitempty"`
}

// ProductVariant is a size/colour combination with its own stock and optional price override.
type ProductVariant struct {
	bun.BaseModel `bun:"table:product_variants,alias:pv"`
	ID            uuid.UUID           `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	ProductID     uuid.UUID           `bun:"product_id,type:uuid,notnull" json:"product_id"`
	Size          string              `bun:"size,notnull" json:"size"`
	Color         string              `bun:"color,notnull" json:"color"`
	Stock         int                 `bun:"stock,notnull,default:0" json:"stock"`
	Price         decimal.NullDecimal `bun:"price,type:numeric(12,2)" json:"price"`
}

// UnitPrice is the variant's own price when set and non-zero, the product price otherwise.
func UnitPrice(product *Product, variant *ProductVariant) decimal.Decimal {
	if variant != nil && variant.Price.Valid && !variant.Price.Decimal.IsZero() {
		return variant.Price.Decimal
	}
	return product.Price
}
