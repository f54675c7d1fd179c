package service

import (
	"context"

	"github.com/bagerileve/storefront/internal/domain"
)

// Catalog resolves products. Unknown ids yield catalog.ErrProductNotFound.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type PickupDates interface {
	AvailableDates(ctx context.Context, products []domain.Product) ([]string, error)
}

// OrderStore persists confirmed orders. Unknown numbers yield orders.ErrOrderNotFound.
type OrderStore interface {
	CreateOrder(ctx context.Context, snapshot domain.OrderSnapshot) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
}

type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *domain.Order, confirmationURL string) error
	SendAdminNotification(ctx context.Context, order *domain.Order, recipient string) error
}

// Analytics records product events. An empty distinctID must be ignored.
type Analytics interface {
	Capture(ctx context.Context, distinctID, event string, props map[string]any) error
}

type TokenIssuer interface {
	Token(orderID string) string
	Verify(orderID, token string) bool
	ThankYouURL(orderID, token string) string
}
