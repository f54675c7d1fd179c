package service

import (
	"context"
	"strings"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	EventOrderCompleted = "Order Completed"
	Currency            = "SEK"
)

type CheckoutRequest struct {
	Customer   domain.Customer
	PickupDate string `validate:"required,datetime=2006-01-02"`
	// DistinctID ties the order to the visitor's analytics profile. Optional.
	DistinctID string
}

type CheckoutResult struct {
	OrderID         string `json:"orderId"`
	Token           string `json:"token"`
	ConfirmationURL string `json:"confirmationUrl"`
}

type CheckoutConfig struct {
	// SiteURL prefixes the thank-you path in emails.
	SiteURL      string
	AdminEmail   string
	PrinterEmail string
}

type CheckoutService struct {
	snapshots *SnapshotBuilder
	orders    OrderStore
	tokens    TokenIssuer
	notifier  Notifier
	analytics Analytics
	cfg       CheckoutConfig
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewCheckoutService(
	snapshots *SnapshotBuilder,
	orders OrderStore,
	tokens TokenIssuer,
	notifier Notifier,
	analytics Analytics,
	cfg CheckoutConfig,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		snapshots: snapshots,
		orders:    orders,
		tokens:    tokens,
		notifier:  notifier,
		analytics: analytics,
		cfg:       cfg,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// Checkout places an order for c. The caller clears the cart when this returns
// without error.
//
// The order is stored before any email goes out. If sending fails the order
// stays stored and a KindServiceUnavailable error is returned.
func (s *CheckoutService) Checkout(ctx context.Context, c domain.Cart, req CheckoutRequest) (*CheckoutResult, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindValidation, "Kontrollera dina uppgifter.", err)
	}

	snapshot, err := s.snapshots.Build(ctx, c, req.Customer, req.PickupDate)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, snapshot)
	if err != nil {
		s.logger.Error("create order failed", zap.Error(err))
		return nil, newError(KindServiceUnavailable, "Kunde inte spara beställningen.", err)
	}
	log := s.logger.With(zap.String("order_number", order.OrderNumber))
	log.Info("order created", zap.String("pickup_date", snapshot.PickupDate), zap.Float64("total", snapshot.Totals.Total))

	token := s.tokens.Token(order.OrderNumber)
	thankYou := s.tokens.ThankYouURL(order.OrderNumber, token)

	if err := s.sendEmails(ctx, order, strings.TrimSuffix(s.cfg.SiteURL, "/")+thankYou); err != nil {
		log.Error("order emails failed", zap.Error(err))
		return nil, newError(KindServiceUnavailable, "Kunde inte skicka bekräftelsemail.", err)
	}

	if req.DistinctID != "" {
		if err := s.analytics.Capture(ctx, req.DistinctID, EventOrderCompleted, orderCompletedProps(order)); err != nil {
			log.Warn("analytics capture failed", zap.Error(err))
		}
	}

	return &CheckoutResult{
		OrderID:         order.OrderNumber,
		Token:           token,
		ConfirmationURL: thankYou,
	}, nil
}

func (s *CheckoutService) sendEmails(ctx context.Context, order *domain.Order, confirmationURL string) error {
	if err := s.notifier.SendOrderConfirmation(ctx, order, confirmationURL); err != nil {
		return err
	}
	if err := s.notifier.SendAdminNotification(ctx, order, s.cfg.AdminEmail); err != nil {
		return err
	}
	if s.cfg.PrinterEmail == "" {
		return nil
	}
	return s.notifier.SendAdminNotification(ctx, order, s.cfg.PrinterEmail)
}

func orderCompletedProps(order *domain.Order) map[string]any {
	totals := order.Snapshot.Totals
	revenue := decimal.NewFromFloat(totals.Total).Sub(decimal.NewFromFloat(totals.Tax))

	products := make([]map[string]any, 0, len(order.Snapshot.Items))
	for _, item := range order.Snapshot.Items {
		products = append(products, map[string]any{
			"product_id": item.VariantID,
			"name":       item.ProductTitle,
			"variant":    item.VariantDescription,
			"price":      item.UnitPrice,
			"quantity":   item.Quantity,
		})
	}

	return map[string]any{
		"order_id": order.OrderNumber,
		"total":    totals.Total,
		"revenue":  revenue.InexactFloat64(),
		"tax":      totals.Tax,
		"currency": Currency,
		"products": products,
	}
}
