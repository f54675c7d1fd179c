package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bagerileve/storefront/internal/cart"
	"github.com/bagerileve/storefront/internal/domain"
	"github.com/bagerileve/storefront/internal/openinghours"
	"github.com/bagerileve/storefront/internal/service"
	"go.uber.org/zap"
)

type MockCartActions struct {
	Cart     domain.Cart
	Title    string
	Err      error
	Received domain.Cart
}

func (m *MockCartActions) AddItem(_ context.Context, c domain.Cart, _ domain.CartItem) (domain.Cart, string, error) {
	m.Received = c
	return m.Cart, m.Title, m.Err
}

func (m *MockCartActions) UpdateItem(_ context.Context, c domain.Cart, _ domain.CartItem) (domain.Cart, error) {
	m.Received = c
	return m.Cart, m.Err
}

func (m *MockCartActions) RemoveItem(_ context.Context, c domain.Cart, _ string, _ float64) (domain.Cart, error) {
	m.Received = c
	return m.Cart, m.Err
}

type MockCheckout struct {
	Result  *service.CheckoutResult
	Err     error
	Request service.CheckoutRequest
	Cart    domain.Cart
}

func (m *MockCheckout) Checkout(_ context.Context, c domain.Cart, req service.CheckoutRequest) (*service.CheckoutResult, error) {
	m.Cart = c
	m.Request = req
	return m.Result, m.Err
}

type MockPickupDates struct {
	Dates []string
	Err   error
}

func (m *MockPickupDates) PickupDates(context.Context, domain.Cart) ([]string, error) {
	return m.Dates, m.Err
}

type MockConfirmations struct {
	Order *domain.Order
	Err   error
}

func (m *MockConfirmations) Lookup(context.Context, string, string) (*domain.Order, error) {
	return m.Order, m.Err
}

type MockOpeningHours struct {
	Result *openinghours.Summary
	Err    error
}

func (m *MockOpeningHours) Summary(context.Context) (*openinghours.Summary, error) {
	return m.Result, m.Err
}

type testServer struct {
	router        http.Handler
	cookies       *cart.CookieStore
	carts         *MockCartActions
	checkout      *MockCheckout
	pickup        *MockPickupDates
	confirmations *MockConfirmations
	hours         *MockOpeningHours
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	s := &testServer{
		cookies:       cart.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false, logger),
		carts:         &MockCartActions{},
		checkout:      &MockCheckout{},
		pickup:        &MockPickupDates{},
		confirmations: &MockConfirmations{},
		hours:         &MockOpeningHours{},
	}
	s.router = NewRouter(Handlers{
		Cart:         NewCartHandler(s.cookies, s.carts, 5*time.Second, logger),
		Checkout:     NewCheckoutHandler(s.cookies, s.checkout, s.pickup, 5*time.Second),
		Orders:       NewOrdersHandler(s.confirmations, "/bestall", 5*time.Second),
		OpeningHours: NewOpeningHoursHandler(s.hours, 5*time.Second, logger),
	}, logger, 10*time.Second)
	return s
}

// withCart attaches a signed cart cookie to req.
func (s *testServer) withCart(t *testing.T, req *http.Request, c domain.Cart) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := s.cookies.Save(rec, c); err != nil {
		t.Fatalf("save cart: %v", err)
	}
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// cartFrom reads the cart cookie set on the response.
func (s *testServer) cartFrom(rec *httptest.ResponseRecorder) domain.Cart {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return s.cookies.Load(httptest.NewRecorder(), req)
}
