package services

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"
)

// CartService keeps the per-session cart ledger consistent with live stock.
type CartService struct {
	logger  *gecho.Logger
	store   repository.CartStore
	catalog repository.CatalogRepository
}

func NewCartService(logger *gecho.Logger, store repository.CartStore, catalog repository.CatalogRepository) *CartService {
	return &CartService{
		logger:  logger,
		store:   store,
		catalog: catalog,
	}
}

type CartLine struct {
	Key       string                 `json:"key"`
	Product   *tables.Product        `json:"product"`
	Variant   *tables.ProductVariant `json:"variant,omitempty"`
	Quantity  int                    `json:"quantity"`
	UnitPrice decimal.Decimal        `json:"unit_price"`
	LineTotal decimal.Decimal        `json:"line_total"`
}

type CartSnapshot struct {
	Lines     []CartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// resolve loads the product and, when the key names one, the variant that belongs to it.
func (cs *CartService) resolve(ctx context.Context, key structs.CartKey) (*tables.Product, *tables.ProductVariant, error) {
	product, err := cs.catalog.ProductByID(ctx, key.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("product %s: %w", key.ProductID, err)
	}
	if key.VariantID == nil {
		return product, nil, nil
	}

	variant, err := cs.catalog.VariantByID(ctx, key.ProductID, *key.VariantID)
	if err != nil {
		return nil, nil, fmt.Errorf("variant %s: %w", *key.VariantID, err)
	}
	return product, variant, nil
}

func liveStock(product *tables.Product, variant *tables.ProductVariant) int {
	if variant != nil {
		return variant.Stock
	}
	return product.Stock
}

// Add increments the entry by one unit. The cart is left untouched on any error.
func (cs *CartService) Add(ctx context.Context, sessionID string, key structs.CartKey) (structs.Cart, error) {
	product, variant, err := cs.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	cart, err := cs.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	stock := liveStock(product, variant)
	current := cart[key.String()]

	if stock < 1 {
		cartOperations.WithLabelValues("add", "out_of_stock").Inc()
		return cart, lib.ErrOutOfStock
	}
	if current+1 > stock {
		cartOperations.WithLabelValues("add", "exceeds_stock").Inc()
		return cart, lib.ErrExceedsStock
	}

	next := cart.Clone()
	next[key.String()] = current + 1
	if err := cs.store.Save(ctx, sessionID, next); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	cartOperations.WithLabelValues("add", "ok").Inc()
	cs.logger.Debug("Cart entry added",
		gecho.Field("session", sessionID),
		gecho.Field("key", key.String()),
		gecho.Field("quantity", current+1),
	)
	return next, nil
}

// Remove deletes the entry. Absent entries are a no-op.
func (cs *CartService) Remove(ctx context.Context, sessionID string, key structs.CartKey) (structs.Cart, error) {
	cart, err := cs.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if _, ok := cart[key.String()]; !ok {
		return cart, nil
	}

	next := cart.Clone()
	delete(next, key.String())
	if err := cs.store.Save(ctx, sessionID, next); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	cartOperations.WithLabelValues("remove", "ok").Inc()
	return next, nil
}

// SetQuantity overwrites the entry's quantity. A quantity <= 0 deletes it.
func (cs *CartService) SetQuantity(ctx context.Context, sessionID string, key structs.CartKey, quantity int) (structs.Cart, error) {
	product, variant, err := cs.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	cart, err := cs.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if quantity > liveStock(product, variant) {
		cartOperations.WithLabelValues("update", "exceeds_stock").Inc()
		return cart, lib.ErrExceedsStock
	}

	next := cart.Clone()
	if quantity <= 0 {
		if _, ok := next[key.String()]; !ok {
			return cart, nil
		}
		delete(next, key.String())
	} else {
		next[key.String()] = quantity
	}

	if err := cs.store.Save(ctx, sessionID, next); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	cartOperations.WithLabelValues("update", "ok").Inc()
	return next, nil
}

// Snapshot prices every entry at its current unit price. Entries whose product or
// variant no longer exists are dropped from the snapshot and from the stored cart.
func (cs *CartService) Snapshot(ctx context.Context, sessionID string) (*CartSnapshot, error) {
	cart, err := cs.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	keys := make([]string, 0, len(cart))
	for k := range cart {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snapshot := &CartSnapshot{Lines: make([]CartLine, 0, len(keys)), Total: decimal.Zero}
	stale := make([]string, 0)

	for _, raw := range keys {
		qty := cart[raw]
		key, err := structs.ParseCartKey(raw)
		if err != nil || qty <= 0 {
			stale = append(stale, raw)
			continue
		}

		product, variant, err := cs.resolve(ctx, key)
		if errors.Is(err, lib.ErrNotFound) {
			stale = append(stale, raw)
			continue
		}
		if err != nil {
			return nil, err
		}

		unit := tables.UnitPrice(product, variant)
		line := unit.Mul(decimal.NewFromInt(int64(qty)))

		snapshot.Lines = append(snapshot.Lines, CartLine{
			Key:       raw,
			Product:   product,
			Variant:   variant,
			Quantity:  qty,
			UnitPrice: unit,
			LineTotal: line,
		})
		snapshot.Total = snapshot.Total.Add(line)
		snapshot.ItemCount += qty
	}

	if len(stale) > 0 {
		next := cart.Clone()
		for _, k := range stale {
			delete(next, k)
		}
		cs.logger.Warn("Dropping stale cart entries",
			gecho.Field("session", sessionID),
			gecho.Field("keys", stale),
		)
		if err := cs.store.Save(ctx, sessionID, next); err != nil {
			cs.logger.Warn("Failed to prune cart", gecho.Field("error", err))
		}
	}

	return snapshot, nil
}

// Cart returns the raw ledger.
func (cs *CartService) Cart(ctx context.Context, sessionID string) (structs.Cart, error) {
	return cs.store.Load(ctx, sessionID)
}

func (cs *CartService) Clear(ctx context.Context, sessionID string) error {
	return cs.store.Clear(ctx, sessionID)
}
