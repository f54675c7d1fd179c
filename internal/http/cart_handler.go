package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bagerileve/storefront/internal/cart"
	"github.com/bagerileve/storefront/internal/domain"
	"github.com/bagerileve/storefront/internal/service"
	"go.uber.org/zap"
)

type CartActions interface {
	AddItem(ctx context.Context, c domain.Cart, item domain.CartItem) (domain.Cart, string, error)
	UpdateItem(ctx context.Context, c domain.Cart, item domain.CartItem) (domain.Cart, error)
	RemoveItem(ctx context.Context, c domain.Cart, productID string, price float64) (domain.Cart, error)
}

type CartHandler struct {
	cookies *cart.CookieStore
	carts   CartActions
	timeout time.Duration
	logger  *zap.Logger
}

func NewCartHandler(cookies *cart.CookieStore, carts CartActions, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cookies: cookies,
		carts:   carts,
		timeout: timeout,
		logger:  logger,
	}
}

type CartItemRequestDTO struct {
	ProductID string  `json:"productId"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

type CartResponseDTO struct {
	service.CartView
	// ProductTitle names the product just added.
	ProductTitle string `json:"productTitle,omitempty"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c := h.cookies.Load(w, r)
	respondJSON(w, http.StatusOK, CartResponseDTO{CartView: service.View(c)})
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	c, title, err := h.carts.AddItem(ctx, h.cookies.Load(w, r), req.item())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !h.save(w, c) {
		return
	}
	respondJSON(w, http.StatusCreated, CartResponseDTO{CartView: service.View(c), ProductTitle: title})
}

// PUT /api/v1/cart/items
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.carts.UpdateItem(ctx, h.cookies.Load(w, r), req.item())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !h.save(w, c) {
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{CartView: service.View(c)})
}

// DELETE /api/v1/cart/items
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.carts.RemoveItem(ctx, h.cookies.Load(w, r), req.ProductID, req.Price)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !h.save(w, c) {
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{CartView: service.View(c)})
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, _ *http.Request) {
	if !h.save(w, cart.Empty) {
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{CartView: service.View(cart.Empty)})
}

func (h *CartHandler) save(w http.ResponseWriter, c domain.Cart) bool {
	err := h.cookies.Save(w, c)
	if errors.Is(err, cart.ErrCartTooLarge) {
		h.logger.Info("cart does not fit in cookie", zap.Error(err))
		handleServiceError(w, service.ErrCartFull)
		return false
	}
	if err != nil {
		h.logger.Error("failed to save cart cookie", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return false
	}
	return true
}

func (req CartItemRequestDTO) item() domain.CartItem {
	return domain.CartItem{ProductID: req.ProductID, Price: req.Price, Qty: req.Qty}
}
