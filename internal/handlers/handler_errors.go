package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/dto"
	"github.com/SscSPs/fx_reference_rates/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	codeValidation          = "VALIDATION_ERROR"
	codeRateNotFound        = "RATE_NOT_FOUND"
	codeInvalidRate         = "INVALID_RATE"
	codeServiceBusy         = "SERVICE_BUSY"
	codeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	codeInternal            = "INTERNAL_ERROR"
)

// writeError writes the standard error body and aborts the chain.
func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

// badRequest reports a malformed request parameter.
func badRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, codeValidation, message)
}

// respondError maps service errors onto HTTP statuses. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		writeError(c, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(c, http.StatusNotFound, codeRateNotFound, err.Error())
	case errors.Is(err, apperrors.ErrInvalidRate):
		writeError(c, http.StatusUnprocessableEntity, codeInvalidRate, err.Error())
	case errors.Is(err, apperrors.ErrTooBusy):
		writeError(c, http.StatusTooManyRequests, codeServiceBusy, err.Error())
	case errors.Is(err, apperrors.ErrDownstreamUnavailable):
		writeError(c, http.StatusServiceUnavailable, codeUpstreamUnavailable, err.Error())
	default:
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Unhandled error", slog.String("error", err.Error()), slog.String("path", c.Request.URL.Path))
		writeError(c, http.StatusInternalServerError, codeInternal, "An unexpected error occurred")
	}
}
