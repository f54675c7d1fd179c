package domain

import "time"

type Variant struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Product is the catalog entry a cart line points at.
//
// MaxQuantityPerOrder caps the quantity of the product across all variants:
// nil means unlimited and 0 means fully booked. PickupDates, when non-empty,
// replaces the default pickup window for orders containing the product.
type Product struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Variants            []Variant `json:"variants"`
	MaxQuantityPerOrder *int      `json:"maxQuantityPerOrder"`
	PickupDates         []string  `json:"pickupDates"`
	CreatedAt           time.Time `json:"createdAt"`
}

// VariantByPrice finds the variant whose price matches exactly.
func (p Product) VariantByPrice(price float64) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Price == price {
			return v, true
		}
	}
	return Variant{}, false
}

func (p Product) IsFullyBooked() bool {
	return p.MaxQuantityPerOrder != nil && *p.MaxQuantityPerOrder == 0
}

func (p Product) HasPickupDates() bool {
	return len(p.PickupDates) > 0
}
