package repository

import (
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog sort orders.
const (
	SortName      = "name"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortRating    = "rating"
)

// ProductFilter narrows a catalog search. Nil/empty fields do not filter.
type ProductFilter struct {
	CategoryID *uuid.UUID
	Query      string
	Size       string
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	Sort       string
}

// CartStore persists session carts.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (structs.Cart, error)
	Save(ctx context.Context, sessionID string, cart structs.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// CatalogRepository reads products, variants and categories. Lookups return lib.ErrNotFound for unknown ids.
type CatalogRepository interface {
	ProductByID(ctx context.Context, id uuid.UUID) (*tables.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*tables.Product, error)
	VariantByID(ctx context.Context, productID, variantID uuid.UUID) (*tables.ProductVariant, error)
	CategoryBySlug(ctx context.Context, slug string) (*tables.Category, error)
	Categories(ctx context.Context) ([]tables.Category, error)
	FeaturedProducts(ctx context.Context, limit int) ([]tables.Product, error)
	// SearchProducts returns one page of matches and the total match count. pageSize 0 returns every match.
	SearchProducts(ctx context.Context, filter ProductFilter, page, pageSize int) ([]tables.Product, int, error)
	SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error
	SetVariantStock(ctx context.Context, variantID uuid.UUID, stock int) (*tables.ProductVariant, error)
}

// CheckoutTx is the unit of work of one checkout. Every call runs inside the same transaction.
type CheckoutTx interface {
	CreateOrder(ctx context.Context, order *tables.Order) error
	LockProduct(ctx context.Context, productID uuid.UUID) (*tables.Product, error)
	LockVariant(ctx context.Context, productID, variantID uuid.UUID) (*tables.ProductVariant, error)
	AddItem(ctx context.Context, item *tables.OrderItem) error
	// Decrement* subtract qty only while stock >= qty and return lib.ErrStockChanged otherwise.
	DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) error
	DecrementVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error
	SetOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
}

// OrderRepository persists orders. RunInTx commits when fn returns nil and rolls back otherwise.
type OrderRepository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx CheckoutTx) error) error
	OrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*tables.Order, error)
	OrdersForUser(ctx context.Context, userID uuid.UUID) ([]tables.Order, error)
	ListOrders(ctx context.Context, page, pageSize int) ([]tables.Order, int, error)
}

type ReviewRepository interface {
	AddReview(ctx context.Context, review *tables.Review) error
	ReviewsForProduct(ctx context.Context, productID uuid.UUID) ([]tables.Review, error)
	LatestReviews(ctx context.Context, limit int) ([]tables.Review, error)
}

type WishlistRepository interface {
	// AddToWishlist is get-or-create and reports whether a row was inserted.
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
	Wishlist(ctx context.Context, userID uuid.UUID) ([]tables.Wishlist, error)
}
