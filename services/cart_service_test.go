package services_test

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/structs"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddIncrementsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.Add(ctx, "s1", productKey(f.kurta))
	require.NoError(t, err)
	cart, err := f.cart.Add(ctx, "s1", productKey(f.kurta))
	require.NoError(t, err)

	assert.Equal(t, structs.Cart{f.kurta.ID.String(): 2}, cart)
	assert.Equal(t, 2, cart.ItemCount())

	stored, err := f.carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, cart, stored)
}

func TestCartAddOutOfStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.Add(ctx, "s1", productKey(f.soldOut))
	assert.ErrorIs(t, err, lib.ErrOutOfStock)

	stored, _ := f.carts.Load(ctx, "s1")
	assert.Empty(t, stored)
}

func TestCartAddExceedsVariantStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := variantKey(f.blue)

	for range 3 {
		_, err := f.cart.Add(ctx, "s1", key)
		require.NoError(t, err)
	}

	_, err := f.cart.Add(ctx, "s1", key)
	assert.ErrorIs(t, err, lib.ErrExceedsStock)

	stored, _ := f.carts.Load(ctx, "s1")
	assert.Equal(t, 3, stored[key.String()])
}

func TestCartVariantAndProductAreSeparateLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.Add(ctx, "s1", productKey(f.saree))
	require.NoError(t, err)
	cart, err := f.cart.Add(ctx, "s1", variantKey(f.red))
	require.NoError(t, err)

	assert.Len(t, cart, 2)
	assert.Equal(t, 1, cart[f.saree.ID.String()])
	assert.Equal(t, 1, cart[f.saree.ID.String()+":"+f.red.ID.String()])
}

func TestCartAddUnknownProductOrForeignVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.Add(ctx, "s1", structs.NewCartKey(uuid.New(), nil))
	assert.ErrorIs(t, err, lib.ErrNotFound)

	// variant of the saree addressed through the kurta
	foreign := f.red.ID
	_, err = f.cart.Add(ctx, "s1", structs.NewCartKey(f.kurta.ID, &foreign))
	assert.ErrorIs(t, err, lib.ErrNotFound)

	stored, _ := f.carts.Load(ctx, "s1")
	assert.Empty(t, stored)
}

func TestCartRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.carts.Put("s1", structs.Cart{f.kurta.ID.String(): 2, f.saree.ID.String(): 1})

	cart, err := f.cart.Remove(ctx, "s1", productKey(f.kurta))
	require.NoError(t, err)
	assert.Equal(t, structs.Cart{f.saree.ID.String(): 1}, cart)

	// absent entry is a no-op
	cart, err = f.cart.Remove(ctx, "s1", productKey(f.kurta))
	require.NoError(t, err)
	assert.Equal(t, structs.Cart{f.saree.ID.String(): 1}, cart)
}

func TestCartSetQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := productKey(f.kurta)

	cart, err := f.cart.SetQuantity(ctx, "s1", key, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart[key.String()])

	_, err = f.cart.SetQuantity(ctx, "s1", key, 16)
	assert.ErrorIs(t, err, lib.ErrExceedsStock)
	stored, _ := f.carts.Load(ctx, "s1")
	assert.Equal(t, 4, stored[key.String()])

	cart, err = f.cart.SetQuantity(ctx, "s1", key, 0)
	require.NoError(t, err)
	assert.NotContains(t, cart, key.String())

	cart, err = f.cart.SetQuantity(ctx, "s1", key, -3)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartSnapshotPricesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.carts.Put("s1", structs.Cart{
		f.kurta.ID.String():         2,
		variantKey(f.blue).String(): 1,
	})

	snap, err := f.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)

	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 3, snap.ItemCount)
	assert.True(t, price(3200).Equal(snap.Total), "got %s", snap.Total)

	for _, line := range snap.Lines {
		switch line.Key {
		case f.kurta.ID.String():
			assert.True(t, price(800).Equal(line.UnitPrice))
			assert.True(t, price(1600).Equal(line.LineTotal))
			assert.Nil(t, line.Variant)
		case variantKey(f.blue).String():
			assert.True(t, price(1600).Equal(line.UnitPrice))
			require.NotNil(t, line.Variant)
			assert.Equal(t, "Blue", line.Variant.Color)
		default:
			t.Fatalf("unexpected line %s", line.Key)
		}
	}
}

func TestCartSnapshotDropsVanishedEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.carts.Put("s1", structs.Cart{
		f.kurta.ID.String():        1,
		variantKey(f.red).String(): 1,
		"not-a-key":                1,
	})
	f.store.DeleteVariant(f.red.ID)

	snap, err := f.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, f.kurta.ID.String(), snap.Lines[0].Key)

	stored, _ := f.carts.Load(ctx, "s1")
	assert.Equal(t, structs.Cart{f.kurta.ID.String(): 1}, stored)
}

func TestCartSnapshotUsesProductPriceWithoutVariantOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plain := f.store.AddVariant(tablesVariant(f.saree.ID, "S", "Green", 2))
	f.carts.Put("s1", structs.Cart{variantKey(plain).String(): 2})

	snap, err := f.cart.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.True(t, price(1500).Equal(snap.Lines[0].UnitPrice))
	assert.True(t, price(3000).Equal(snap.Total))
}
