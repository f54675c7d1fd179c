package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bagerileve/storefront/internal/catalog"
	"github.com/bagerileve/storefront/internal/domain"
	"github.com/bagerileve/storefront/internal/orders"
)

func intPtr(v int) *int { return &v }

// MockCatalog implements Catalog from a fixed product map.
type MockCatalog struct {
	Products map[string]domain.Product
	Err      error
	Calls    []string
}

func (m *MockCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.Calls = append(m.Calls, id)
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, catalog.ErrProductNotFound)
	}
	return &p, nil
}

// MockPickup implements PickupDates and records the products it was asked about.
type MockPickup struct {
	Dates    []string
	Err      error
	Products []domain.Product
}

func (m *MockPickup) AvailableDates(_ context.Context, products []domain.Product) ([]string, error) {
	m.Products = products
	return m.Dates, m.Err
}

type MockOrderStore struct {
	Number    string
	CreateErr error
	GetErr    error
	Created   *domain.OrderSnapshot
	Orders    map[string]*domain.Order
	Lookups   int
}

func (m *MockOrderStore) CreateOrder(_ context.Context, snapshot domain.OrderSnapshot) (*domain.Order, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Created = &snapshot
	return &domain.Order{OrderNumber: m.Number, CreatedAt: time.Date(2025, 10, 23, 10, 0, 0, 0, time.UTC), Snapshot: snapshot}, nil
}

func (m *MockOrderStore) GetOrderByNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	m.Lookups++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	order, ok := m.Orders[orderNumber]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return order, nil
}

// MockNotifier records sends in order. FailOn names the step that errors:
// "customer" or an admin recipient address.
type MockNotifier struct {
	FailOn string
	Err    error
	Sent   []string
	URL    string
}

func (m *MockNotifier) SendOrderConfirmation(_ context.Context, order *domain.Order, confirmationURL string) error {
	if m.FailOn == "customer" {
		return m.Err
	}
	m.Sent = append(m.Sent, "customer:"+order.Snapshot.Customer.Email)
	m.URL = confirmationURL
	return nil
}

func (m *MockNotifier) SendAdminNotification(_ context.Context, _ *domain.Order, recipient string) error {
	if m.FailOn == recipient {
		return m.Err
	}
	m.Sent = append(m.Sent, "admin:"+recipient)
	return nil
}

type capture struct {
	DistinctID string
	Event      string
	Props      map[string]any
}

type MockAnalytics struct {
	Err      error
	Captured []capture
}

func (m *MockAnalytics) Capture(_ context.Context, distinctID, event string, props map[string]any) error {
	m.Captured = append(m.Captured, capture{DistinctID: distinctID, Event: event, Props: props})
	return m.Err
}

// MockTokens issues "tok-<order>" tokens.
type MockTokens struct{}

func (MockTokens) Token(orderID string) string { return "tok-" + orderID }

func (MockTokens) Verify(orderID, token string) bool { return token == "tok-"+orderID }

func (MockTokens) ThankYouURL(orderID, token string) string {
	return "/bestall/tack?orderId=" + orderID + "&token=" + token
}

func bakeryCatalog() *MockCatalog {
	return &MockCatalog{Products: map[string]domain.Product{
		"surdegsbrod": {
			ID:       "surdegsbrod",
			Title:    "Surdegsbröd",
			Variants: []domain.Variant{{ID: domain.StandardVariantID, Description: "Standard", Price: 65}},
		},
		"prinsesstarta": {
			ID:    "prinsesstarta",
			Title: "Prinsesstårta",
			Variants: []domain.Variant{
				{ID: "liten", Description: "4 bitar", Price: 220},
				{ID: "stor", Description: "8 bitar", Price: 380},
			},
			MaxQuantityPerOrder: intPtr(2),
		},
		"lussekatt": {
			ID:                  "lussekatt",
			Title:               "Lussekatt",
			Variants:            []domain.Variant{{ID: domain.StandardVariantID, Description: "Standard", Price: 25}},
			MaxQuantityPerOrder: intPtr(0),
		},
	}}
}
