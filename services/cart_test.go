package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/database"
	"go-storefront/pricing"
)

func TestAddToCart_SameProductSumsQuantities(t *testing.T) {
	db, clk := newTestDB(t)
	carts := NewCartService(db, clk)
	ctx := context.Background()

	first, err := carts.AddToCart(ctx, customerUserID, mugID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	clk.Advance(time.Minute)
	second, err := carts.AddToCart(ctx, customerUserID, mugID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, "99.95", second.LineTotal.String())

	items, err := carts.ListCart(ctx, customerUserID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAddToCart_Rejects(t *testing.T) {
	db, clk := newTestDB(t)
	carts := NewCartService(db, clk)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, customerUserID, mugID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = carts.AddToCart(ctx, customerUserID, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.Exec("UPDATE products SET is_active = 0 WHERE id = ?", mugID)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, customerUserID, mugID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddToCart_QuantityCap(t *testing.T) {
	db, clk := newTestDB(t)
	carts := NewCartService(db, clk)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, customerUserID, mugID, math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = carts.AddToCart(ctx, customerUserID, mugID, MaxCartQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	line, err := carts.AddToCart(ctx, customerUserID, mugID, MaxCartQuantity-1)
	require.NoError(t, err)

	// Merging past the cap is rejected and leaves the line as it was.
	_, err = carts.AddToCart(ctx, customerUserID, mugID, 2)
	assert.ErrorIs(t, err, database.ErrCheckViolation)

	_, err = carts.UpdateCartLine(ctx, line.ID, customerUserID, math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidInput)

	items, err := carts.ListCart(ctx, customerUserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, MaxCartQuantity-1, items[0].Quantity)

	summary, err := carts.Summary(ctx, customerUserID)
	require.NoError(t, err)
	assert.Equal(t, MaxCartQuantity-1, summary.ItemCount)

	line, err = carts.AddToCart(ctx, customerUserID, mugID, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxCartQuantity, line.Quantity)
}

func TestUpdateCartLine(t *testing.T) {
	db, clk := newTestDB(t)
	carts := NewCartService(db, clk)
	ctx := context.Background()

	line, err := carts.AddToCart(ctx, customerUserID, tshirtID, 1)
	require.NoError(t, err)

	updated, err := carts.UpdateCartLine(ctx, line.ID, customerUserID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	for _, qty := range []int{0, -2} {
		line, err := carts.AddToCart(ctx, customerUserID, tshirtID, 1)
		require.NoError(t, err)

		removed, err := carts.UpdateCartLine(ctx, line.ID, customerUserID, qty)
		require.NoError(t, err)
		assert.Nil(t, removed)

		items, err := carts.ListCart(ctx, customerUserID)
		require.NoError(t, err)
		assert.Empty(t, items)
	}
}

func TestUpdateCartLine_OtherUsersLine(t *testing.T) {
	db, clk := newTestDB(t)
	carts := NewCartService(db, clk)
	ctx := context.Background()

	line, err := carts.AddToCart(ctx, customerUserID, tshirtID, 2)
	require.NoError(t, err)

	_, err = carts.UpdateCartLine(ctx, line.ID, ownerUserID, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	err = carts.RemoveCartLine(ctx, line.ID, ownerUserID)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := carts.ListCart(ctx, customerUserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartSummary(t *testing.T) {
	db, clk := newTestDB(t)
	carts := NewCartService(db, clk)
	ctx := context.Background()

	empty, err := carts.Summary(ctx, customerUserID)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.True(t, empty.Totals.Total.IsZero())
	assert.Equal(t, pricing.FreeShippingThreshold.String(), empty.Totals.FreeShippingRemaining.String())

	_, err = carts.AddToCart(ctx, customerUserID, mugID, 2)
	require.NoError(t, err)
	clk.Advance(time.Second)
	_, err = carts.AddToCart(ctx, customerUserID, tshirtID, 1)
	require.NoError(t, err)

	cart, err := carts.Summary(ctx, customerUserID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, tshirtID, cart.Items[0].ProductID, "newest line first")
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "69.97", cart.Totals.Subtotal.String())
	assert.True(t, cart.Totals.Shipping.IsZero())
	assert.Equal(t, "5.60", cart.Totals.Tax.String())
	assert.Equal(t, "75.57", cart.Totals.Total.String())
}

func TestCartSummary_HidesInactiveProducts(t *testing.T) {
	db, clk := newTestDB(t)
	carts := NewCartService(db, clk)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, customerUserID, mugID, 1)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE products SET is_active = 0 WHERE id = ?", mugID)
	require.NoError(t, err)

	cart, err := carts.Summary(ctx, customerUserID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.ItemCount)
}

func TestClearCart(t *testing.T) {
	db, clk := newTestDB(t)
	carts := NewCartService(db, clk)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, customerUserID, mugID, 1)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, customerUserID, tshirtID, 1)
	require.NoError(t, err)

	n, err := carts.ClearCart(ctx, customerUserID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = carts.ClearCart(ctx, customerUserID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
