package service

import (
	"context"
	"errors"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/bagerileve/storefront/internal/orders"
	"go.uber.org/zap"
)

// ErrConfirmationDenied covers both a bad token and an unknown order so the
// caller cannot tell them apart.
var ErrConfirmationDenied = errors.New("order confirmation denied")

type ConfirmationService struct {
	orders OrderStore
	tokens TokenIssuer
	logger *zap.Logger
}

func NewConfirmationService(orders OrderStore, tokens TokenIssuer, logger *zap.Logger) *ConfirmationService {
	return &ConfirmationService{orders: orders, tokens: tokens, logger: logger}
}

// Lookup returns the order when token was issued for orderID. The token is
// checked before the store is queried.
func (s *ConfirmationService) Lookup(ctx context.Context, orderID, token string) (*domain.Order, error) {
	if !s.tokens.Verify(orderID, token) {
		return nil, ErrConfirmationDenied
	}

	order, err := s.orders.GetOrderByNumber(ctx, orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		return nil, ErrConfirmationDenied
	}
	if err != nil {
		s.logger.Error("order lookup failed", zap.String("order_number", orderID), zap.Error(err))
		return nil, newError(KindServiceUnavailable, "Kunde inte hämta beställningen.", err)
	}
	return order, nil
}
