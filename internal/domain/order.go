package domain

import "time"

// StandardVariantID marks the single default variant of a product.
const StandardVariantID = "standard"

type Customer struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
}

// OrderLine copies everything shown to the customer out of the catalog, so the
// order reads the same after the catalog changes.
type OrderLine struct {
	ProductTitle       string  `json:"productTitle" validate:"required"`
	VariantID          string  `json:"variantId" validate:"required"`
	VariantDescription string  `json:"variantDescription"`
	UnitPrice          float64 `json:"unitPrice" validate:"gte=0"`
	Quantity           int     `json:"quantity" validate:"gte=1"`
	LineTotal          float64 `json:"lineTotal" validate:"gte=0"`
}

// OrderSnapshot is the immutable content of a confirmed order.
type OrderSnapshot struct {
	Customer   Customer    `json:"customer"`
	PickupDate string      `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	Items      []OrderLine `json:"items" validate:"required,min=1,dive"`
	Totals     CartTotal   `json:"totals"`
}

// Order is a stored snapshot.
type Order struct {
	OrderNumber string        `json:"orderNumber"`
	CreatedAt   time.Time     `json:"createdAt"`
	Snapshot    OrderSnapshot `json:"snapshot"`
}
