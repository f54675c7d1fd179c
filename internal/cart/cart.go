// Package cart implements the cart rules as pure transformations: every
// function takes the current cart and returns a new one, leaving its input
// untouched.
package cart

import (
	"errors"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxRate is the VAT included in every price.
const TaxRate = 0.12

// ErrProductMismatch means an update targeted a line the cart does not have.
var ErrProductMismatch = errors.New("PRODUCT_ID_MISMATCH")

// Empty is the cart every client starts with.
var Empty = domain.Cart{Items: []domain.CartItem{}}

// Add puts item into the cart, merging with an existing line of the same
// product and price. With a cap, the quantity across all variants of the
// product never exceeds maxQty; whatever does not fit is dropped.
func Add(c domain.Cart, item domain.CartItem, maxQty *int) domain.Cart {
	qty := item.Qty
	if maxQty != nil {
		room := max(*maxQty-c.QtyOf(item.ProductID), 0)
		qty = min(item.Qty, room)
	}
	if qty <= 0 {
		return c
	}

	idx := indexOf(c, item.ProductID, item.Price)
	if idx < 0 {
		items := make([]domain.CartItem, len(c.Items), len(c.Items)+1)
		copy(items, c.Items)
		items = append(items, domain.CartItem{ProductID: item.ProductID, Price: item.Price, Qty: qty})
		return domain.Cart{Items: items}
	}

	items := clone(c.Items)
	items[idx].Qty += qty
	return domain.Cart{Items: items}
}

// Update sets the quantity of an existing line. A quantity of zero removes the
// line. With a cap, the line gets at most what the other variants of the same
// product leave over; a line left with nothing is removed.
func Update(c domain.Cart, item domain.CartItem, maxQty *int) (domain.Cart, error) {
	idx := indexOf(c, item.ProductID, item.Price)
	if idx < 0 {
		return c, ErrProductMismatch
	}
	if item.Qty <= 0 {
		return removeAt(c, idx), nil
	}
	if maxQty == nil {
		items := clone(c.Items)
		items[idx].Qty = item.Qty
		return domain.Cart{Items: items}, nil
	}

	others := c.QtyOf(item.ProductID) - c.Items[idx].Qty
	qty := min(item.Qty, max(*maxQty-others, 0))
	if qty == 0 {
		return removeAt(c, idx), nil
	}

	items := clone(c.Items)
	items[idx].Qty = qty
	return domain.Cart{Items: items}, nil
}

// Remove drops the line for productID at price.
func Remove(c domain.Cart, productID string, price float64) (domain.Cart, error) {
	return Update(c, domain.CartItem{ProductID: productID, Price: price, Qty: 0}, nil)
}

// Total sums the cart and extracts the included tax, rounded to whole units.
func Total(c domain.Cart) domain.CartTotal {
	if c.IsEmpty() {
		return domain.CartTotal{}
	}

	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	net := total.Div(decimal.NewFromFloat(1 + TaxRate))
	tax := total.Sub(net).Round(0)

	return domain.CartTotal{
		Total: total.InexactFloat64(),
		Tax:   tax.InexactFloat64(),
	}
}

func indexOf(c domain.Cart, productID string, price float64) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.Price == price {
			return i
		}
	}
	return -1
}

func clone(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

func removeAt(c domain.Cart, idx int) domain.Cart {
	items := make([]domain.CartItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:idx]...)
	items = append(items, c.Items[idx+1:]...)
	return domain.Cart{Items: items}
}
