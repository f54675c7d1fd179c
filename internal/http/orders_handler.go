package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/bagerileve/storefront/internal/service"
)

type Confirmations interface {
	Lookup(ctx context.Context, orderID, token string) (*domain.Order, error)
}

type OrdersHandler struct {
	confirmations Confirmations
	shopURL       string
	timeout       time.Duration
}

// NewOrdersHandler sends denied confirmation requests to shopURL.
func NewOrdersHandler(confirmations Confirmations, shopURL string, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		confirmations: confirmations,
		shopURL:       shopURL,
		timeout:       timeout,
	}
}

// GET /api/v1/orders/confirmation?orderId=&token=
func (h *OrdersHandler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	order, err := h.confirmations.Lookup(ctx, q.Get("orderId"), q.Get("token"))
	if errors.Is(err, service.ErrConfirmationDenied) {
		http.Redirect(w, r, h.shopURL, http.StatusSeeOther)
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
