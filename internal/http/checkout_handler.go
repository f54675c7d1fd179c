package http

import (
	"context"
	"net/http"
	"time"

	"github.com/bagerileve/storefront/internal/cart"
	"github.com/bagerileve/storefront/internal/domain"
	"github.com/bagerileve/storefront/internal/service"
)

type Checkout interface {
	Checkout(ctx context.Context, c domain.Cart, req service.CheckoutRequest) (*service.CheckoutResult, error)
}

type PickupDates interface {
	PickupDates(ctx context.Context, c domain.Cart) ([]string, error)
}

type CheckoutHandler struct {
	cookies  *cart.CookieStore
	checkout Checkout
	pickup   PickupDates
	timeout  time.Duration
}

func NewCheckoutHandler(cookies *cart.CookieStore, checkout Checkout, pickup PickupDates, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		cookies:  cookies,
		checkout: checkout,
		pickup:   pickup,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	PickupDate  string `json:"pickupDate"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message,omitempty"`
	AcceptTerms bool   `json:"acceptTerms"`
	DistinctID  string `json:"posthogDistinctId,omitempty"`
}

type PickupDatesResponseDTO struct {
	Dates []string `json:"dates"`
}

// GET /api/v1/pickup-dates
func (h *CheckoutHandler) GetPickupDates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	available, err := h.pickup.PickupDates(ctx, h.cookies.Load(w, r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, PickupDatesResponseDTO{Dates: available})
}

// POST /api/v1/checkout
//
// The cart cookie is cleared only when the order went through.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.AcceptTerms {
		respondError(w, http.StatusBadRequest, "terms_not_accepted", "Du måste godkänna köpvillkoren.")
		return
	}

	result, err := h.checkout.Checkout(ctx, h.cookies.Load(w, r), service.CheckoutRequest{
		Customer: domain.Customer{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Message: req.Message,
		},
		PickupDate: req.PickupDate,
		DistinctID: req.DistinctID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.cookies.Clear(w)
	respondJSON(w, http.StatusCreated, result)
}
