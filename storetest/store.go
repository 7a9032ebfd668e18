// Package storetest provides in-memory implementations of the repository and service
// ports for tests.
package storetest

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/repository"
	"bengaliboutique_server/structs/tables"
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInjected = errors.New("injected failure")

// Store is an in-memory catalog, order, review and wishlist repository. Transactions
// hold the store lock for their whole duration and roll back on error.
type Store struct {
	mu sync.Mutex

	categories map[uuid.UUID]*tables.Category
	products   map[uuid.UUID]*tables.Product
	variants   map[uuid.UUID]*tables.ProductVariant
	orders     map[uuid.UUID]*tables.Order
	items      []tables.OrderItem
	reviews    []tables.Review
	wishlists  []tables.Wishlist

	now time.Time

	// FailAfterItems makes AddItem fail once this many items were added in one transaction. Zero disables it.
	FailAfterItems int
	// TxAttempts counts RunInTx calls.
	TxAttempts int
}

var (
	_ repository.CatalogRepository  = (*Store)(nil)
	_ repository.OrderRepository    = (*Store)(nil)
	_ repository.ReviewRepository   = (*Store)(nil)
	_ repository.WishlistRepository = (*Store)(nil)
)

func New() *Store {
	return &Store{
		categories: make(map[uuid.UUID]*tables.Category),
		products:   make(map[uuid.UUID]*tables.Product),
		variants:   make(map[uuid.UUID]*tables.ProductVariant),
		orders:     make(map[uuid.UUID]*tables.Order),
		now:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so "newest first" orderings are deterministic.
func (s *Store) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

// ============================================================================
// Seeding and inspection
// ============================================================================

func (s *Store) AddCategory(name, slug string) *tables.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &tables.Category{ID: uuid.New(), Name: name, Slug: slug}
	s.categories[c.ID] = c
	cp := *c
	return &cp
}

// AddProduct stores p, assigning an id and creation time when missing.
func (s *Store) AddProduct(p tables.Product) *tables.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.tick()
	}
	if p.Slug == "" {
		p.Slug = strings.ToLower(strings.ReplaceAll(p.Name, " ", "-"))
	}
	p.Category = nil
	p.Variants = nil
	s.products[p.ID] = &p
	cp := p
	return &cp
}

func (s *Store) AddVariant(v tables.ProductVariant) *tables.ProductVariant {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	s.variants[v.ID] = &v
	cp := v
	return &cp
}

func (s *Store) DeleteProduct(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	for vid, v := range s.variants {
		if v.ProductID == id {
			delete(s.variants, vid)
		}
	}
}

func (s *Store) DeleteVariant(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.variants, id)
}

func (s *Store) ProductStock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.Stock
	}
	return -1
}

func (s *Store) VariantStock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.variants[id]; ok {
		return v.Stock
	}
	return -1
}

// OrderCount returns the number of committed orders.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// ItemCount returns the number of committed order items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// StoredOrder returns the order row as persisted, without items.
func (s *Store) StoredOrder(id uuid.UUID) (*tables.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	cp := *o
	cp.Items = nil
	return &cp, true
}

// ============================================================================
// CatalogRepository
// ============================================================================

func (s *Store) productLocked(id uuid.UUID) (*tables.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) variantLocked(productID, variantID uuid.UUID) (*tables.ProductVariant, error) {
	v, ok := s.variants[variantID]
	if !ok || v.ProductID != productID {
		return nil, lib.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *Store) ProductByID(_ context.Context, id uuid.UUID) (*tables.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productLocked(id)
}

func (s *Store) ProductBySlug(_ context.Context, slug string) (*tables.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.Slug != slug {
			continue
		}
		cp := *p
		if c, ok := s.categories[p.CategoryID]; ok {
			cc := *c
			cp.Category = &cc
		}
		for _, v := range s.variants {
			if v.ProductID == p.ID {
				cp.Variants = append(cp.Variants, *v)
			}
		}
		sort.Slice(cp.Variants, func(i, j int) bool {
			if cp.Variants[i].Size != cp.Variants[j].Size {
				return cp.Variants[i].Size < cp.Variants[j].Size
			}
			return cp.Variants[i].Color < cp.Variants[j].Color
		})
		return &cp, nil
	}
	return nil, lib.ErrNotFound
}

func (s *Store) VariantByID(_ context.Context, productID, variantID uuid.UUID) (*tables.ProductVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variantLocked(productID, variantID)
}

func (s *Store) CategoryBySlug(_ context.Context, slug string) (*tables.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, lib.ErrNotFound
}

func (s *Store) Categories(_ context.Context) ([]tables.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tables.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) FeaturedProducts(_ context.Context, limit int) ([]tables.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.allProductsLocked()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) allProductsLocked() []tables.Product {
	out := make([]tables.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out
}

func (s *Store) SearchProducts(_ context.Context, filter repository.ProductFilter, page, pageSize int) ([]tables.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(filter.Query)
	size := strings.ToLower(filter.Size)

	matches := make([]tables.Product, 0)
	for _, p := range s.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if size != "" && !strings.Contains(strings.ToLower(p.Size), size) {
			continue
		}
		if filter.PriceMin != nil && p.Price.LessThan(*filter.PriceMin) {
			continue
		}
		if filter.PriceMax != nil && p.Price.GreaterThan(*filter.PriceMax) {
			continue
		}
		matches = append(matches, *p)
	}

	ratings := s.averageRatingsLocked()
	less := func(a, b tables.Product) int {
		switch filter.Sort {
		case repository.SortPriceAsc:
			return a.Price.Cmp(b.Price)
		case repository.SortPriceDesc:
			return b.Price.Cmp(a.Price)
		case repository.SortNewest:
			return b.CreatedAt.Compare(a.CreatedAt)
		case repository.SortRating:
			ra, okA := ratings[a.ID]
			rb, okB := ratings[b.ID]
			switch {
			case okA && okB:
				return rb.Cmp(ra)
			case okA:
				return -1
			case okB:
				return 1
			}
			return 0
		default:
			return strings.Compare(a.Name, b.Name)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if c := less(matches[i], matches[j]); c != 0 {
			return c < 0
		}
		return bytes.Compare(matches[i].ID[:], matches[j].ID[:]) < 0
	})

	total := len(matches)
	if pageSize <= 0 {
		return matches, total, nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []tables.Product{}, total, nil
	}
	end := min(start+pageSize, total)
	return matches[start:end], total, nil
}

func (s *Store) averageRatingsLocked() map[uuid.UUID]decimal.Decimal {
	sums := make(map[uuid.UUID]int)
	counts := make(map[uuid.UUID]int)
	for _, r := range s.reviews {
		sums[r.ProductID] += r.Rating
		counts[r.ProductID]++
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(sums))
	for id, sum := range sums {
		out[id] = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(counts[id])))
	}
	return out
}

func (s *Store) SetProductStock(_ context.Context, productID uuid.UUID, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return lib.ErrNotFound
	}
	p.Stock = stock
	return nil
}

func (s *Store) SetVariantStock(_ context.Context, variantID uuid.UUID, stock int) (*tables.ProductVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok {
		return nil, lib.ErrNotFound
	}
	v.Stock = stock
	cp := *v
	return &cp, nil
}

// ============================================================================
// OrderRepository
// ============================================================================

type snapshot struct {
	productStock map[uuid.UUID]int
	variantStock map[uuid.UUID]int
	orderIDs     map[uuid.UUID]bool
	itemCount    int
	now          time.Time
}

func (s *Store) snapshotLocked() snapshot {
	snap := snapshot{
		productStock: make(map[uuid.UUID]int, len(s.products)),
		variantStock: make(map[uuid.UUID]int, len(s.variants)),
		orderIDs:     make(map[uuid.UUID]bool, len(s.orders)),
		itemCount:    len(s.items),
		now:          s.now,
	}
	for id, p := range s.products {
		snap.productStock[id] = p.Stock
	}
	for id, v := range s.variants {
		snap.variantStock[id] = v.Stock
	}
	for id := range s.orders {
		snap.orderIDs[id] = true
	}
	return snap
}

func (s *Store) restoreLocked(snap snapshot) {
	for id, stock := range snap.productStock {
		if p, ok := s.products[id]; ok {
			p.Stock = stock
		}
	}
	for id, stock := range snap.variantStock {
		if v, ok := s.variants[id]; ok {
			v.Stock = stock
		}
	}
	for id := range s.orders {
		if !snap.orderIDs[id] {
			delete(s.orders, id)
		}
	}
	s.items = s.items[:snap.itemCount]
	s.now = snap.now
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.CheckoutTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TxAttempts++
	snap := s.snapshotLocked()
	if err := fn(ctx, &memTx{s: s}); err != nil {
		s.restoreLocked(snap)
		return err
	}
	return nil
}

func (s *Store) itemsForLocked(orderID uuid.UUID) []tables.OrderItem {
	out := make([]tables.OrderItem, 0)
	for _, it := range s.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store) OrderForUser(_ context.Context, orderID, userID uuid.UUID) (*tables.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, lib.ErrNotFound
	}
	cp := *o
	cp.Items = s.itemsForLocked(o.ID)
	sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].ProductName < cp.Items[j].ProductName })
	return &cp, nil
}

func (s *Store) ordersLocked(match func(*tables.Order) bool) []tables.Order {
	out := make([]tables.Order, 0)
	for _, o := range s.orders {
		if !match(o) {
			continue
		}
		cp := *o
		cp.Items = s.itemsForLocked(o.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) OrdersForUser(_ context.Context, userID uuid.UUID) ([]tables.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersLocked(func(o *tables.Order) bool { return o.UserID == userID }), nil
}

func (s *Store) ListOrders(_ context.Context, page, pageSize int) ([]tables.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.ordersLocked(func(*tables.Order) bool { return true })
	if pageSize <= 0 {
		return all, len(all), nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []tables.Order{}, len(all), nil
	}
	return all[start:min(start+pageSize, len(all))], len(all), nil
}

// memTx runs with the store lock already held.
type memTx struct {
	s     *Store
	added int
}

func (t *memTx) CreateOrder(_ context.Context, order *tables.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = t.s.tick()
	cp := *order
	cp.Items = nil
	t.s.orders[order.ID] = &cp
	return nil
}

func (t *memTx) LockProduct(_ context.Context, productID uuid.UUID) (*tables.Product, error) {
	return t.s.productLocked(productID)
}

func (t *memTx) LockVariant(_ context.Context, productID, variantID uuid.UUID) (*tables.ProductVariant, error) {
	return t.s.variantLocked(productID, variantID)
}

func (t *memTx) AddItem(_ context.Context, item *tables.OrderItem) error {
	if t.s.FailAfterItems > 0 && t.added >= t.s.FailAfterItems {
		return ErrInjected
	}
	if _, ok := t.s.orders[item.OrderID]; !ok {
		return lib.ErrNotFound
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	t.s.items = append(t.s.items, *item)
	t.added++
	return nil
}

func (t *memTx) DecrementProductStock(_ context.Context, productID uuid.UUID, qty int) error {
	p, ok := t.s.products[productID]
	if !ok || p.Stock < qty {
		return lib.ErrStockChanged
	}
	p.Stock -= qty
	return nil
}

func (t *memTx) DecrementVariantStock(_ context.Context, variantID uuid.UUID, qty int) error {
	v, ok := t.s.variants[variantID]
	if !ok || v.Stock < qty {
		return lib.ErrStockChanged
	}
	v.Stock -= qty
	return nil
}

func (t *memTx) SetOrderTotal(_ context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	o, ok := t.s.orders[orderID]
	if !ok {
		return lib.ErrNotFound
	}
	o.TotalPrice = total
	return nil
}

// ============================================================================
// ReviewRepository
// ============================================================================

func (s *Store) AddReview(_ context.Context, review *tables.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[review.ProductID]; !ok {
		return lib.ErrNotFound
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = s.tick()
	s.reviews = append(s.reviews, *review)
	return nil
}

func (s *Store) reviewsLocked(match func(tables.Review) bool, limit int) []tables.Review {
	out := make([]tables.Review, 0)
	for _, r := range s.reviews {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) ReviewsForProduct(_ context.Context, productID uuid.UUID) ([]tables.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewsLocked(func(r tables.Review) bool { return r.ProductID == productID }, 0), nil
}

func (s *Store) LatestReviews(_ context.Context, limit int) ([]tables.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewsLocked(func(tables.Review) bool { return true }, limit), nil
}

// ============================================================================
// WishlistRepository
// ============================================================================

func (s *Store) AddToWishlist(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.wishlists {
		if w.UserID == userID && w.ProductID == productID {
			return false, nil
		}
	}
	s.wishlists = append(s.wishlists, tables.Wishlist{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: s.tick(),
	})
	return true, nil
}

func (s *Store) RemoveFromWishlist(_ context.Context, userID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.wishlists[:0]
	for _, w := range s.wishlists {
		if w.UserID == userID && w.ProductID == productID {
			continue
		}
		kept = append(kept, w)
	}
	s.wishlists = kept
	return nil
}

func (s *Store) Wishlist(_ context.Context, userID uuid.UUID) ([]tables.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tables.Wishlist, 0)
	for _, w := range s.wishlists {
		if w.UserID != userID {
			continue
		}
		if p, ok := s.products[w.ProductID]; ok {
			cp := *p
			w.Product = &cp
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
