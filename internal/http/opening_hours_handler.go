package http

import (
	"context"
	"net/http"
	"time"

	"github.com/bagerileve/storefront/internal/openinghours"
	"go.uber.org/zap"
)

type OpeningHours interface {
	Summary(ctx context.Context) (*openinghours.Summary, error)
}

type OpeningHoursHandler struct {
	hours   OpeningHours
	timeout time.Duration
	logger  *zap.Logger
}

func NewOpeningHoursHandler(hours OpeningHours, timeout time.Duration, logger *zap.Logger) *OpeningHoursHandler {
	return &OpeningHoursHandler{hours: hours, timeout: timeout, logger: logger}
}

// GET /api/v1/opening-hours
func (h *OpeningHoursHandler) GetOpeningHours(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summary, err := h.hours.Summary(ctx)
	if err != nil {
		h.logger.Error("failed to load opening hours", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "Kunde inte hämta öppettider.")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
