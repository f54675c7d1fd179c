package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Cart         *CartHandler
	Checkout     *CheckoutHandler
	Orders       *OrdersHandler
	OpeningHours *OpeningHoursHandler
}

func NewRouter(h Handlers, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items", h.Cart.UpdateItem)
			r.Delete("/items", h.Cart.RemoveItem)
		})
		r.Get("/pickup-dates", h.Checkout.GetPickupDates)
		r.Post("/checkout", h.Checkout.PlaceOrder)
		r.Get("/orders/confirmation", h.Orders.GetConfirmation)
		r.Get("/opening-hours", h.OpeningHours.GetOpeningHours)
	})

	return r
}
