package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// For exchange rates this is a write conflict on (currency, rate_date).
var ErrDuplicate = errors.New("resource already exists")

// ErrRateNotFound is returned when rate resolution exhausted every tier.
var ErrRateNotFound = fmt.Errorf("exchange rate not found: %w", ErrNotFound)

// ErrInvalidRate is returned when a resolved rate cannot be used for conversion (zero rate).
var ErrInvalidRate = errors.New("invalid exchange rate")

// ErrDownstreamUnavailable indicates the rate provider could not be reached or kept failing.
var ErrDownstreamUnavailable = errors.New("rate provider unavailable")

// ErrCircuitOpen indicates the provider circuit breaker rejected the call without trying it.
var ErrCircuitOpen = fmt.Errorf("circuit breaker open: %w", ErrDownstreamUnavailable)

// ErrTooBusy indicates the provider call throttle was saturated.
var ErrTooBusy = errors.New("too many concurrent provider calls")

// ErrParseSkip marks a CSV row that was dropped during normalization.
var ErrParseSkip = errors.New("row skipped")

// AppError carries an HTTP-ish status code alongside a message and the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError that matches ErrNotFound.
func NewNotFoundError(message string) error {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationError returns an AppError that matches ErrValidation.
func NewValidationError(message string) error {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}
