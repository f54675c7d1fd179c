package cart

import (
	"testing"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleCart() domain.Cart {
	return domain.Cart{Items: []domain.CartItem{
		{ProductID: "test-1", Price: 1, Qty: 1},
		{ProductID: "test-1", Price: 2, Qty: 1},
		{ProductID: "test-2", Price: 1, Qty: 2},
	}}
}

func TestTotal_EmptyCart(t *testing.T) {
	assert.Equal(t, domain.CartTotal{Total: 0, Tax: 0}, Total(Empty))
	assert.Equal(t, domain.CartTotal{}, Total(domain.Cart{}))
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.CartItem
		total float64
		tax   float64
	}{
		{"single item", []domain.CartItem{{ProductID: "test-1", Price: 10, Qty: 1}}, 10, 1},
		{"many of one item", []domain.CartItem{{ProductID: "test-1", Price: 10, Qty: 3}}, 30, 3},
		{"several products", []domain.CartItem{
			{ProductID: "test-1", Price: 10, Qty: 3},
			{ProductID: "test-2", Price: 59, Qty: 1},
			{ProductID: "test-3", Price: 99.9, Qty: 1},
		}, 188.9, 20},
		{"tax is included in price", []domain.CartItem{{ProductID: "test-1", Price: 112, Qty: 1}}, 112, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Total(domain.Cart{Items: tt.items})
			assert.Equal(t, tt.total, got.Total)
			assert.Equal(t, tt.tax, got.Tax)
		})
	}
}

func TestAdd_ToEmptyCart(t *testing.T) {
	c := Add(Empty, domain.CartItem{ProductID: "test-1", Price: 10, Qty: 2}, nil)

	require.Len(t, c.Items, 1)
	assert.Equal(t, domain.CartItem{ProductID: "test-1", Price: 10, Qty: 2}, c.Items[0])
	assert.Empty(t, Empty.Items, "Empty must never change")
}

func TestAdd_MergesSameVariant(t *testing.T) {
	c := Add(sampleCart(), domain.CartItem{ProductID: "test-2", Price: 1, Qty: 3}, nil)

	require.Len(t, c.Items, 3)
	assert.Equal(t, 5, c.Items[2].Qty)
}

func TestAdd_NewVariantIsAppended(t *testing.T) {
	c := Add(sampleCart(), domain.CartItem{ProductID: "test-2", Price: 5, Qty: 1}, nil)

	require.Len(t, c.Items, 4)
	assert.Equal(t, domain.CartItem{ProductID: "test-2", Price: 5, Qty: 1}, c.Items[3])
}

func TestAdd_CapsAtMaxQtyOnEmptyCart(t *testing.T) {
	c := Add(Empty, domain.CartItem{ProductID: "test-1", Price: 10, Qty: 5}, intPtr(3))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Qty)
}

func TestAdd_CapsWhenItemAlreadyInCart(t *testing.T) {
	start := domain.Cart{Items: []domain.CartItem{{ProductID: "A", Price: 10, Qty: 1}}}

	c := Add(start, domain.CartItem{ProductID: "A", Price: 10, Qty: 2}, intPtr(2))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Qty)
	assert.Equal(t, 1, start.Items[0].Qty, "input cart must not change")
}

func TestAdd_CapCountsOtherVariants(t *testing.T) {
	// test-1 already has 2 across two prices.
	c := Add(sampleCart(), domain.CartItem{ProductID: "test-1", Price: 2, Qty: 5}, intPtr(3))

	assert.Equal(t, 3, c.QtyOf("test-1"))
	assert.Equal(t, 2, c.Items[1].Qty)
}

func TestAdd_NothingLeftUnderCap(t *testing.T) {
	start := sampleCart()
	c := Add(start, domain.CartItem{ProductID: "test-1", Price: 1, Qty: 1}, intPtr(2))

	assert.Equal(t, start, c)
}

func TestAdd_ZeroCapLeavesCartUnchanged(t *testing.T) {
	start := sampleCart()
	c := Add(start, domain.CartItem{ProductID: "test-3", Price: 1, Qty: 1}, intPtr(0))

	assert.Equal(t, start, c)
}

func TestAdd_NeverExceedsCapAcrossVariants(t *testing.T) {
	const limit = 4
	c := Empty
	adds := []domain.CartItem{
		{ProductID: "P", Price: 10, Qty: 1},
		{ProductID: "P", Price: 20, Qty: 2},
		{ProductID: "P", Price: 10, Qty: 3},
		{ProductID: "P", Price: 30, Qty: 1},
		{ProductID: "Q", Price: 10, Qty: 9},
	}
	for _, item := range adds {
		c = Add(c, item, intPtr(limit))
		assert.LessOrEqual(t, c.QtyOf("P"), limit)
	}
	assert.Equal(t, limit, c.QtyOf("P"))
	assert.Equal(t, limit, c.QtyOf("Q"))
}

func TestUpdate_ProductMismatch(t *testing.T) {
	start := sampleCart()

	c, err := Update(start, domain.CartItem{ProductID: "test-3", Price: 1, Qty: 1}, nil)

	assert.ErrorIs(t, err, ErrProductMismatch)
	assert.Equal(t, sampleCart(), c)
	assert.Equal(t, sampleCart(), start)
}

func TestUpdate_PriceMustMatchExactly(t *testing.T) {
	_, err := Update(sampleCart(), domain.CartItem{ProductID: "test-2", Price: 1.5, Qty: 1}, nil)
	assert.ErrorIs(t, err, ErrProductMismatch)
}

func TestUpdate_ReducesQty(t *testing.T) {
	c, err := Update(sampleCart(), domain.CartItem{ProductID: "test-2", Price: 1, Qty: 1}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, c.Items[2].Qty)
}

func TestUpdate_CapsSinglePriceOption(t *testing.T) {
	c, err := Update(sampleCart(), domain.CartItem{ProductID: "test-2", Price: 1, Qty: 1000000000}, intPtr(4))

	require.NoError(t, err)
	require.Len(t, c.Items, 3)
	assert.Equal(t, domain.CartItem{ProductID: "test-2", Price: 1, Qty: 4}, c.Items[2])
}

func TestUpdate_CapsAcrossPriceOptions(t *testing.T) {
	c, err := Update(sampleCart(), domain.CartItem{ProductID: "test-1", Price: 2, Qty: 3}, intPtr(3))

	require.NoError(t, err)
	require.Len(t, c.Items, 3)
	assert.Equal(t, domain.CartItem{ProductID: "test-1", Price: 2, Qty: 2}, c.Items[1])
}

func TestUpdate_OtherVariantsAlreadyAtCap(t *testing.T) {
	start := domain.Cart{Items: []domain.CartItem{
		{ProductID: "A", Price: 10, Qty: 3},
		{ProductID: "A", Price: 20, Qty: 1},
	}}

	c, err := Update(start, domain.CartItem{ProductID: "A", Price: 20, Qty: 2}, intPtr(2))

	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{ProductID: "A", Price: 10, Qty: 3}}, c.Items)
}

func TestUpdate_ZeroQtyRemovesOnlyThatLine(t *testing.T) {
	c, err := Update(sampleCart(), domain.CartItem{ProductID: "test-1", Price: 1, Qty: 0}, nil)

	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{
		{ProductID: "test-1", Price: 2, Qty: 1},
		{ProductID: "test-2", Price: 1, Qty: 2},
	}, c.Items)
}

func TestRemove(t *testing.T) {
	start := sampleCart()

	c, err := Remove(start, "test-2", 1)

	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
	assert.NotContains(t, c.ProductIDs(), "test-2")
	assert.Len(t, start.Items, 3)
}

func TestRemove_Missing(t *testing.T) {
	_, err := Remove(Empty, "test-2", 1)
	assert.ErrorIs(t, err, ErrProductMismatch)
}
