package services_test

import (
	"bengaliboutique_server/config"
	"bengaliboutique_server/services"
	"bengaliboutique_server/storetest"
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fixture struct {
	cfg    *structs.Config
	store  *storetest.Store
	carts  *storetest.Carts
	outbox *storetest.Outbox
	events *storetest.Events
	idem   *storetest.Idempotency
	cache  *storetest.ProductCache

	cart     *services.CartService
	checkout *services.CheckoutService
	catalog  *services.CatalogService
	orders   *services.OrderService
	reviews  *services.ReviewService
	wishlist *services.WishlistService

	women, men *tables.Category
	saree      *tables.Product
	kurta      *tables.Product
	soldOut    *tables.Product
	red, blue  *tables.ProductVariant

	user *structs.AuthClaims
}

func testConfig() *structs.Config {
	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.Shop.ShippingFee = decimal.NewFromInt(100)
	cfg.Shop.CurrencySymbol = "৳"
	cfg.Shop.PageSize = 12
	cfg.Shop.FeaturedCount = 6
	cfg.Shop.LatestReviews = 3
	cfg.Shop.IdempotencyTTL = time.Hour
	cfg.Shop.AdminOrdersLimit = 50
	cfg.Email.AdminEmail = "admin@bengaliboutique.com"
	cfg.Encryption.Key = ""
	return cfg
}

func price(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		cfg:    testConfig(),
		store:  storetest.New(),
		carts:  storetest.NewCarts(),
		outbox: storetest.NewOutbox(),
		events: &storetest.Events{},
		idem:   storetest.NewIdempotency(),
		cache:  storetest.NewProductCache(),
		user: &structs.AuthClaims{
			Sub:      uuid.New(),
			Username: "alice",
			Email:    "alice@example.com",
			Role:     structs.RoleUser,
		},
	}

	f.women = f.store.AddCategory("Women", "women")
	f.men = f.store.AddCategory("Men", "men")

	f.saree = f.store.AddProduct(tables.Product{
		Name:          "Silk Saree",
		Slug:          "silk-saree",
		Description:   "Handwoven silk saree",
		Price:         price(1500),
		OriginalPrice: decimal.NewNullDecimal(price(1800)),
		Discount:      20,
		Stock:         10,
		CategoryID:    f.women.ID,
		Size:          "M",
	})
	f.kurta = f.store.AddProduct(tables.Product{
		Name:        "Cotton Kurta",
		Slug:        "cotton-kurta",
		Description: "Everyday cotton kurta",
		Price:       price(800),
		Stock:       15,
		CategoryID:  f.men.ID,
		Size:        "L",
	})
	f.soldOut = f.store.AddProduct(tables.Product{
		Name:       "Jamdani Dupatta",
		Slug:       "jamdani-dupatta",
		Price:      price(600),
		Stock:      0,
		CategoryID: f.women.ID,
	})
	f.red = f.store.AddVariant(tables.ProductVariant{
		ProductID: f.saree.ID,
		Size:      "M",
		Color:     "Red",
		Stock:     5,
		Price:     decimal.NewNullDecimal(price(1500)),
	})
	f.blue = f.store.AddVariant(tables.ProductVariant{
		ProductID: f.saree.ID,
		Size:      "L",
		Color:     "Blue",
		Stock:     3,
		Price:     decimal.NewNullDecimal(price(1600)),
	})

	f.rebuild()
	return f
}

// rebuild recreates the services after a config change.
func (f *fixture) rebuild() {
	logger := config.NewLogger(false)
	f.cart = services.NewCartService(logger, f.carts, f.store)
	f.checkout = services.NewCheckoutService(logger, f.cfg, f.carts, f.store, f.outbox, f.events, f.idem, f.cache)
	f.catalog = services.NewCatalogService(logger, f.cfg.Shop, f.store, f.store, f.cache)
	f.orders = services.NewOrderService(logger, f.cfg, f.store)
	f.reviews = services.NewReviewService(logger, f.store, f.store)
	f.wishlist = services.NewWishlistService(logger, f.store, f.store)
}

func productKey(p *tables.Product) structs.CartKey {
	return structs.NewCartKey(p.ID, nil)
}

func variantKey(v *tables.ProductVariant) structs.CartKey {
	id := v.ID
	return structs.NewCartKey(v.ProductID, &id)
}

func (f *fixture) request(session string) services.CheckoutRequest {
	return services.CheckoutRequest{
		SessionID:       session,
		User:            f.user,
		ShippingAddress: "12 Road, Dhaka",
		PaymentMethod:   "cash",
	}
}

// tablesVariant builds a variant without a price override.
func tablesVariant(productID uuid.UUID, size, color string, stock int) tables.ProductVariant {
	return tables.ProductVariant{
		ProductID: productID,
		Size:      size,
		Color:     color,
		Stock:     stock,
	}
}
