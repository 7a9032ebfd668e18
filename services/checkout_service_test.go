package services_test

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/storetest"
	"bengaliboutique_server/structs"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutPlacesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.carts.Put("s1", structs.Cart{
		f.saree.ID.String():         2,
		variantKey(f.blue).String(): 1,
	})

	order, err := f.checkout.Checkout(ctx, f.request("s1"))
	require.NoError(t, err)
	require.NotNil(t, order)

	// 100 shipping + 2 x 1500 + 1 x 1600
	assert.Equal(t, "4700.00", order.TotalPrice.StringFixed(2))
	assert.Equal(t, f.user.Sub, order.UserID)
	assert.Equal(t, "alice", order.Username)
	assert.Equal(t, "12 Road, Dhaka", order.ShippingAddress)
	assert.Equal(t, "12 Road, Dhaka", order.BillingAddress, "billing defaults to shipping")
	require.Len(t, order.Items, 2)

	assert.Equal(t, 8, f.store.ProductStock(f.saree.ID))
	assert.Equal(t, 2, f.store.VariantStock(f.blue.ID))
	assert.Equal(t, 5, f.store.VariantStock(f.red.ID))

	stored, ok := f.store.StoredOrder(order.ID)
	require.True(t, ok)
	assert.True(t, order.TotalPrice.Equal(stored.TotalPrice))

	cart, _ := f.carts.Load(ctx, "s1")
	assert.Empty(t, cart)

	msgs := f.outbox.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Order Confirmation", msgs[0].Subject)
	assert.Equal(t, []string{"alice@example.com"}, msgs[0].To)
	assert.Equal(t, fmt.Sprintf("Your order #%s has been placed. Total: ৳4700.00", order.ID), msgs[0].Body)
	assert.Equal(t, "New Order Placed", msgs[1].Subject)
	assert.Equal(t, []string{"admin@bengaliboutique.com"}, msgs[1].To)
	assert.Equal(t, fmt.Sprintf("Order #%s by alice for ৳4700.00", order.ID), msgs[1].Body)

	require.Equal(t, 1, f.events.Count())
	assert.Equal(t, order.ID, f.events.Published[0].OrderID)
	assert.Len(t, f.events.Published[0].Items, 2)
}

func TestCheckoutItemsSnapshotLinePrice(t *testing.T) {
	f := newFixture(t)
	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 3})

	order, err := f.checkout.Checkout(context.Background(), f.request("s1"))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	item := order.Items[0]
	assert.Equal(t, "Cotton Kurta", item.ProductName)
	assert.Equal(t, 3, item.Quantity)
	assert.Nil(t, item.VariantID)
	assert.Equal(t, "2400.00", item.Price.StringFixed(2))
	assert.Equal(t, "2500.00", order.TotalPrice.StringFixed(2))
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Checkout(context.Background(), f.request("s1"))
	assert.ErrorIs(t, err, lib.ErrEmptyCart)
	assert.Zero(t, f.store.OrderCount())
	assert.Empty(t, f.outbox.Messages())
}

func TestCheckoutRequiresUser(t *testing.T) {
	f := newFixture(t)
	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 1})

	req := f.request("s1")
	req.User = nil
	_, err := f.checkout.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, lib.ErrUnauthenticated)
}

func TestCheckoutValidatesForm(t *testing.T) {
	f := newFixture(t)
	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 1})

	req := f.request("s1")
	req.ShippingAddress = "   "
	_, err := f.checkout.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, lib.ErrValidationFailed)

	var ve *lib.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "shipping_address", ve.Errors[0].Field)
	assert.Equal(t, 15, f.store.ProductStock(f.kurta.ID))
}

func TestCheckoutStockChangedSinceAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.carts.Put("s1", structs.Cart{
		f.kurta.ID.String(): 2,
		f.saree.ID.String(): 5,
	})
	require.NoError(t, f.store.SetProductStock(ctx, f.saree.ID, 3))

	_, err := f.checkout.Checkout(ctx, f.request("s1"))
	require.ErrorIs(t, err, lib.ErrStockChanged)

	var sc *lib.StockChangedError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, "Silk Saree", sc.ProductName)
	assert.Equal(t, 5, sc.Requested)
	assert.Equal(t, 3, sc.Available)

	// nothing from the other line was committed
	assert.Equal(t, 15, f.store.ProductStock(f.kurta.ID))
	assert.Equal(t, 3, f.store.ProductStock(f.saree.ID))
	assert.Zero(t, f.store.OrderCount())
	assert.Zero(t, f.store.ItemCount())

	cart, _ := f.carts.Load(ctx, "s1")
	assert.Len(t, cart, 2, "cart survives a failed checkout")
	assert.Empty(t, f.outbox.Messages())
}

func TestCheckoutRollsBackOnMidTransactionFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailAfterItems = 1
	f.carts.Put("s1", structs.Cart{
		f.kurta.ID.String():        1,
		variantKey(f.red).String(): 2,
	})

	_, err := f.checkout.Checkout(context.Background(), f.request("s1"))
	require.ErrorIs(t, err, storetest.ErrInjected)

	assert.Equal(t, 15, f.store.ProductStock(f.kurta.ID))
	assert.Equal(t, 5, f.store.VariantStock(f.red.ID))
	assert.Zero(t, f.store.OrderCount())
	assert.Zero(t, f.store.ItemCount())
	assert.Zero(t, f.events.Count())
}

func TestCheckoutVanishedProductFailsWhole(t *testing.T) {
	f := newFixture(t)
	f.carts.Put("s1", structs.Cart{
		f.kurta.ID.String(): 1,
		f.saree.ID.String(): 1,
	})
	f.store.DeleteProduct(f.saree.ID)

	_, err := f.checkout.Checkout(context.Background(), f.request("s1"))
	assert.ErrorIs(t, err, lib.ErrNotFound)
	assert.Equal(t, 15, f.store.ProductStock(f.kurta.ID))
	assert.Zero(t, f.store.OrderCount())
}

func TestCheckoutNotificationFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	smtpDown := errors.New("smtp down")
	f.outbox.Fail["Order Confirmation"] = smtpDown
	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 1})

	order, err := f.checkout.Checkout(context.Background(), f.request("s1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, lib.ErrNotificationFailed)
	assert.ErrorIs(t, err, smtpDown)

	var ne *lib.NotificationError
	require.ErrorAs(t, err, &ne)
	require.NotNil(t, order)
	assert.Equal(t, order.ID, ne.OrderID)

	_, ok := f.store.StoredOrder(order.ID)
	assert.True(t, ok, "order stays committed")
	assert.Equal(t, 14, f.store.ProductStock(f.kurta.ID))

	cart, _ := f.carts.Load(context.Background(), "s1")
	assert.Empty(t, cart, "cart is cleared even when notification fails")
	assert.Empty(t, f.outbox.Messages(), "admin alert is not sent after the buyer mail failed")
}

func TestCheckoutAdminAlertFailure(t *testing.T) {
	f := newFixture(t)
	f.outbox.Fail["New Order Placed"] = errors.New("rejected")
	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 1})

	order, err := f.checkout.Checkout(context.Background(), f.request("s1"))
	assert.ErrorIs(t, err, lib.ErrNotificationFailed)
	require.NotNil(t, order)
	require.Len(t, f.outbox.Messages(), 1)
	assert.Equal(t, "Order Confirmation", f.outbox.Messages()[0].Subject)
}

func TestCheckoutConcurrentBuyersNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SetProductStock(ctx, f.kurta.ID, 5))

	const buyers = 12
	for i := range buyers {
		f.carts.Put(fmt.Sprintf("s%d", i), structs.Cart{f.kurta.ID.String(): 1})
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)
	for i := range buyers {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			_, err := f.checkout.Checkout(ctx, f.request(session))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, lib.ErrStockChanged):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(fmt.Sprintf("s%d", i))
	}
	wg.Wait()

	assert.Equal(t, 5, placed)
	assert.Equal(t, buyers-5, rejected)
	assert.Equal(t, 0, f.store.ProductStock(f.kurta.ID))
	assert.Equal(t, 5, f.store.OrderCount())
}

func TestCheckoutIdempotencyKeyReplaysOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 1})

	req := f.request("s1")
	req.IdempotencyKey = "abc-123"

	first, err := f.checkout.Checkout(ctx, req)
	require.NoError(t, err)

	second, err := f.checkout.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.OrderCount())
	assert.Equal(t, 14, f.store.ProductStock(f.kurta.ID))
	assert.Len(t, f.outbox.Messages(), 2, "replay sends no mail")
}

func TestCheckoutIdempotencyKeyReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request("s1")
	req.IdempotencyKey = "retry-me"

	_, err := f.checkout.Checkout(ctx, req)
	require.ErrorIs(t, err, lib.ErrEmptyCart)

	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 1})
	order, err := f.checkout.Checkout(ctx, req)
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestCheckoutEncryptsStoredAddresses(t *testing.T) {
	f := newFixture(t)
	f.cfg.Encryption.Key = strings.Repeat("k", 32)
	f.rebuild()
	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 1})

	order, err := f.checkout.Checkout(context.Background(), f.request("s1"))
	require.NoError(t, err)
	assert.Equal(t, "12 Road, Dhaka", order.ShippingAddress)

	stored, ok := f.store.StoredOrder(order.ID)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(stored.ShippingAddress, "enc:"))
	assert.NotContains(t, stored.BillingAddress, "Dhaka")

	confirmed, err := f.orders.Confirmation(context.Background(), f.user, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 Road, Dhaka", confirmed.ShippingAddress)
	assert.Equal(t, "12 Road, Dhaka", confirmed.BillingAddress)
}

func TestCheckoutInvalidatesCachedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Product(ctx, f.kurta.Slug)
	require.NoError(t, err)
	require.True(t, f.cache.Has(f.kurta.Slug))

	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 1})
	_, err = f.checkout.Checkout(ctx, f.request("s1"))
	require.NoError(t, err)
	assert.False(t, f.cache.Has(f.kurta.Slug))
}
