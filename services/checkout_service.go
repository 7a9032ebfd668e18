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
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyStore deduplicates checkout submissions that carry the same key.
type IdempotencyStore interface {
	// Claim reserves key. When it is already held, orderID is the order it produced,
	// or uuid.Nil while that checkout is still in flight.
	Claim(ctx context.Context, key string, ttl time.Duration) (claimed bool, orderID uuid.UUID, err error)
	Complete(ctx context.Context, key string, orderID uuid.UUID, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// ProductCache caches product detail by slug.
type ProductCache interface {
	GetProduct(ctx context.Context, slug string) (*tables.Product, error)
	SetProduct(ctx context.Context, product *tables.Product) error
	InvalidateProducts(ctx context.Context, slugs ...string) error
}

type CheckoutRequest struct {
	SessionID       string              `json:"-"`
	User            *structs.AuthClaims `json:"-"`
	IdempotencyKey  string              `json:"-"`
	ShippingAddress string              `json:"shipping_address" validate:"required,max=1000"`
	BillingAddress  string              `json:"billing_address" validate:"omitempty,max=1000"`
	PaymentMethod   string              `json:"payment_method" validate:"required,max=50"`
}

type CheckoutService struct {
	logger   *gecho.Logger
	cfg      *structs.Config
	carts    repository.CartStore
	orders   repository.OrderRepository
	notifier Notifier
	events   EventPublisher
	idem     IdempotencyStore
	cache    ProductCache
	encKey   string
}

func NewCheckoutService(
	logger *gecho.Logger,
	cfg *structs.Config,
	carts repository.CartStore,
	orders repository.OrderRepository,
	notifier Notifier,
	events EventPublisher,
	idem IdempotencyStore,
	cache ProductCache,
) *CheckoutService {
	key := ""
	if cfg.Encryption != nil {
		key = cfg.Encryption.Key
	}
	return &CheckoutService{
		logger:   logger,
		cfg:      cfg,
		carts:    carts,
		orders:   orders,
		notifier: notifier,
		events:   events,
		idem:     idem,
		cache:    cache,
		encKey:   key,
	}
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("idem:checkout:%s:%s", userID, key)
}

// Checkout converts the session cart into an order in one transaction. Every line is
// revalidated against locked stock and decremented with a guarded update, so either all
// lines commit or none do. Notifications go out after commit; when one fails the order
// stays placed and is returned together with a *lib.NotificationError.
func (cs *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*tables.Order, error) {
	if req.User == nil {
		return nil, lib.ErrUnauthenticated
	}

	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	req.BillingAddress = strings.TrimSpace(req.BillingAddress)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if err := lib.Validate(req); err != nil {
		checkoutOutcomes.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if req.BillingAddress == "" {
		req.BillingAddress = req.ShippingAddress
	}

	var idemKey string
	if req.IdempotencyKey != "" && cs.idem != nil {
		idemKey = idempotencyKey(req.User.Sub, req.IdempotencyKey)
		claimed, previous, err := cs.idem.Claim(ctx, idemKey, cs.cfg.Shop.IdempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		if !claimed {
			if previous == uuid.Nil {
				return nil, fmt.Errorf("%w: checkout already in progress", lib.ErrConflict)
			}
			cs.logger.Info("Replaying idempotent checkout",
				gecho.Field("order_id", previous),
				gecho.Field("user_id", req.User.Sub),
			)
			checkoutOutcomes.WithLabelValues("replayed").Inc()
			return cs.replay(ctx, previous, req.User.Sub)
		}
	}

	cart, err := cs.carts.Load(ctx, req.SessionID)
	if err != nil {
		cs.release(ctx, idemKey)
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart) == 0 {
		cs.release(ctx, idemKey)
		checkoutOutcomes.WithLabelValues("empty_cart").Inc()
		return nil, lib.ErrEmptyCart
	}

	billing, err := lib.EncryptField(req.BillingAddress, cs.encKey)
	if err != nil {
		cs.release(ctx, idemKey)
		return nil, fmt.Errorf("failed to encrypt billing address: %w", err)
	}
	shipping, err := lib.EncryptField(req.ShippingAddress, cs.encKey)
	if err != nil {
		cs.release(ctx, idemKey)
		return nil, fmt.Errorf("failed to encrypt shipping address: %w", err)
	}

	keys := make([]string, 0, len(cart))
	for k := range cart {
		keys = append(keys, k)
	}
	// Ascending key order gives every checkout the same lock order.
	sort.Strings(keys)

	var (
		order   *tables.Order
		touched []string
	)

	err = cs.orders.RunInTx(ctx, func(ctx context.Context, tx repository.CheckoutTx) error {
		order = &tables.Order{
			UserID:          req.User.Sub,
			Username:        req.User.Username,
			BillingAddress:  billing,
			ShippingAddress: shipping,
			PaymentMethod:   req.PaymentMethod,
			TotalPrice:      decimal.Zero,
		}
		touched = touched[:0]

		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		subtotal := decimal.Zero
		for _, raw := range keys {
			item, slug, err := cs.placeLine(ctx, tx, order.ID, raw, cart[raw])
			if err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
			subtotal = subtotal.Add(item.Price)
			touched = append(touched, slug)
		}

		total := cs.cfg.Shop.ShippingFee.Add(subtotal)
		if err := tx.SetOrderTotal(ctx, order.ID, total); err != nil {
			return fmt.Errorf("failed to set order total: %w", err)
		}
		order.TotalPrice = total
		return nil
	})
	if err != nil {
		cs.release(ctx, idemKey)
		outcome := "failed"
		if errors.Is(err, lib.ErrStockChanged) {
			outcome = "stock_changed"
		}
		checkoutOutcomes.WithLabelValues(outcome).Inc()
		return nil, err
	}

	order.BillingAddress = req.BillingAddress
	order.ShippingAddress = req.ShippingAddress
	checkoutOutcomes.WithLabelValues("placed").Inc()
	cs.logger.Info("Order placed",
		gecho.Field("order_id", order.ID),
		gecho.Field("user_id", order.UserID),
		gecho.Field("total", order.TotalPrice.StringFixed(2)),
		gecho.Field("items", len(order.Items)),
	)

	if idemKey != "" {
		if err := cs.idem.Complete(ctx, idemKey, order.ID, cs.cfg.Shop.IdempotencyTTL); err != nil {
			cs.logger.Warn("Failed to record idempotency key", gecho.Field("error", err))
		}
	}
	if cs.cache != nil && len(touched) > 0 {
		if err := cs.cache.InvalidateProducts(ctx, touched...); err != nil {
			cs.logger.Warn("Failed to invalidate product cache", gecho.Field("error", err))
		}
	}
	if cs.events != nil {
		if err := cs.events.PublishOrderEvent(ctx, NewOrderPlacedEvent(order)); err != nil {
			cs.logger.Warn("Failed to publish order event", gecho.Field("order_id", order.ID), gecho.Field("error", err))
		}
	}

	notifyErr := cs.notify(ctx, order, req.User)

	if err := cs.carts.Clear(ctx, req.SessionID); err != nil {
		cs.logger.Warn("Failed to clear cart after checkout",
			gecho.Field("session", req.SessionID),
			gecho.Field("error", err),
		)
	}

	if notifyErr != nil {
		notificationFailures.Inc()
		return order, &lib.NotificationError{OrderID: order.ID, Err: notifyErr}
	}
	return order, nil
}

// placeLine locks the line's stock row, revalidates the quantity, records the order item
// and decrements stock. It returns the item and the product slug.
func (cs *CheckoutService) placeLine(ctx context.Context, tx repository.CheckoutTx, orderID uuid.UUID, raw string, qty int) (*tables.OrderItem, string, error) {
	key, err := structs.ParseCartKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", lib.ErrNotFound, err)
	}

	product, err := tx.LockProduct(ctx, key.ProductID)
	if err != nil {
		return nil, "", fmt.Errorf("product %s: %w", key.ProductID, err)
	}

	var variant *tables.ProductVariant
	available := product.Stock
	if key.VariantID != nil {
		variant, err = tx.LockVariant(ctx, key.ProductID, *key.VariantID)
		if err != nil {
			return nil, "", fmt.Errorf("variant %s: %w", *key.VariantID, err)
		}
		available = variant.Stock
	}

	if qty <= 0 || qty > available {
		return nil, "", &lib.StockChangedError{ProductName: product.Name, Requested: qty, Available: available}
	}

	item := &tables.OrderItem{
		OrderID:     orderID,
		ProductID:   product.ID,
		VariantID:   key.VariantID,
		Quantity:    qty,
		Price:       tables.UnitPrice(product, variant).Mul(decimal.NewFromInt(int64(qty))),
		ProductName: product.Name,
	}
	if err := tx.AddItem(ctx, item); err != nil {
		return nil, "", fmt.Errorf("failed to add order item: %w", err)
	}

	if variant != nil {
		err = tx.DecrementVariantStock(ctx, variant.ID, qty)
	} else {
		err = tx.DecrementProductStock(ctx, product.ID, qty)
	}
	if errors.Is(err, lib.ErrStockChanged) {
		return nil, "", &lib.StockChangedError{ProductName: product.Name, Requested: qty, Available: available}
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to decrement stock: %w", err)
	}

	return item, product.Slug, nil
}

// notify sends the buyer confirmation, then the admin alert. The first failure is returned.
func (cs *CheckoutService) notify(ctx context.Context, order *tables.Order, user *structs.AuthClaims) error {
	currency := cs.cfg.Shop.CurrencySymbol

	if user.Email == "" {
		cs.logger.Warn("Buyer has no email address, skipping confirmation", gecho.Field("order_id", order.ID))
	} else if err := cs.notifier.Send(ctx, BuyerConfirmation(order, user.Email, currency)); err != nil {
		return fmt.Errorf("buyer confirmation: %w", err)
	}

	if err := cs.notifier.Send(ctx, AdminAlert(order, cs.cfg.Email.AdminEmail, currency)); err != nil {
		return fmt.Errorf("admin alert: %w", err)
	}
	return nil
}

func (cs *CheckoutService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := cs.idem.Release(ctx, key); err != nil {
		cs.logger.Warn("Failed to release idempotency key", gecho.Field("key", key), gecho.Field("error", err))
	}
}

// replay returns the order an earlier checkout with the same idempotency key produced.
func (cs *CheckoutService) replay(ctx context.Context, orderID, userID uuid.UUID) (*tables.Order, error) {
	order, err := cs.orders.OrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.BillingAddress, err = lib.DecryptField(order.BillingAddress, cs.encKey); err != nil {
		return nil, err
	}
	if order.ShippingAddress, err = lib.DecryptField(order.ShippingAddress, cs.encKey); err != nil {
		return nil, err
	}
	return order, nil
}
