package domain

// CartItem is one line of a cart. Price is the unit price and also tells
// variants of the same product apart.
type CartItem struct {
	ProductID string  `json:"productId" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Qty       int     `json:"qty" validate:"gte=1"`
}

// Cart holds at most one line per (ProductID, Price) pair.
type Cart struct {
	Items []CartItem `json:"items" validate:"dive"`
}

type CartTotal struct {
	Total float64 `json:"total"`
	Tax   float64 `json:"tax"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// QtyOf sums the quantity of a product over all of its price variants.
func (c Cart) QtyOf(productID string) int {
	sum := 0
	for _, item := range c.Items {
		if item.ProductID == productID {
			sum += item.Qty
		}
	}
	return sum
}

// ProductIDs lists the distinct products in line order.
func (c Cart) ProductIDs() []string {
	seen := make(map[string]struct{}, len(c.Items))
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
