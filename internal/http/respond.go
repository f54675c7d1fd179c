package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bagerileve/storefront/internal/service"
	"go.uber.org/zap"
)

// maxRequestBodySize bounds every JSON request body.
const maxRequestBodySize = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleServiceError converts service errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	var httpStatus int
	switch svcErr.Kind {
	case service.KindValidation:
		httpStatus = http.StatusBadRequest
	case service.KindNotFound:
		httpStatus = http.StatusNotFound
	case service.KindBusinessRule:
		httpStatus = http.StatusUnprocessableEntity
	case service.KindProductMismatch:
		httpStatus = http.StatusConflict
	case service.KindServiceUnavailable:
		httpStatus = http.StatusServiceUnavailable
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, svcErr.Kind.String(), svcErr.Message)
}
