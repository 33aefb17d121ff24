package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class to API clients.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeForbidden          Code = "FORBIDDEN"
	CodeGatewayRejected    Code = "GATEWAY_REJECTED"
	CodeGatewayUnavailable Code = "GATEWAY_UNAVAILABLE"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// AppError is the error type crossing service boundaries. It carries the
// taxonomy code, a client-safe message and the HTTP status it maps to.
type AppError struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	HTTPCode int    `json:"-"`
	Err      error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on the code so wrapped copies of a sentinel compare equal.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

// Wrap attaches a cause to a copy of the given sentinel.
func Wrap(base *AppError, err error) *AppError {
	return &AppError{Code: base.Code, Message: base.Message, HTTPCode: base.HTTPCode, Err: err}
}

// WithMessage returns a copy of the sentinel with a more specific message.
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	return &AppError{Code: e.Code, Message: fmt.Sprintf(format, args...), HTTPCode: e.HTTPCode, Err: e.Err}
}

// Predeclared errors
var (
	ErrInvalidInput       = New(CodeValidation, "Invalid input", http.StatusBadRequest)
	ErrInvalidStatus      = New(CodeValidation, "Invalid order status", http.StatusBadRequest)
	ErrInvalidRating      = New(CodeValidation, "Rating must be between 1 and 5", http.StatusBadRequest)
	ErrOrderNotFound      = New(CodeNotFound, "Order not found", http.StatusNotFound)
	ErrReviewNotFound     = New(CodeNotFound, "Review not found", http.StatusNotFound)
	ErrDuplicateReview    = New(CodeConflict, "A review for this product already exists", http.StatusConflict)
	ErrNotDelivered       = New(CodeForbidden, "Order has not been delivered", http.StatusForbidden)
	ErrNotOrderOwner      = New(CodeForbidden, "Email does not match the order contact", http.StatusForbidden)
	ErrGatewayRejected    = New(CodeGatewayRejected, "Payment verification was not successful", http.StatusBadRequest)
	ErrGatewayUnavailable = New(CodeGatewayUnavailable, "Payment gateway could not be reached", http.StatusBadGateway)
	ErrInternal           = New(CodeInternal, "Internal server error", http.StatusInternalServerError)
)

// FromError normalizes any error to an *AppError; unknown errors become
// internal with the cause preserved for logging.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternal, err)
}

// Internal wraps an unexpected failure with context for the log line while
// keeping the generic client message.
func Internal(err error, context string) *AppError {
	return Wrap(ErrInternal, fmt.Errorf("%s: %w", context, err))
}
