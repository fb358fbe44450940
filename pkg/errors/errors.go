package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels classify failures independently of the connector that produced
// them. AppError wraps one of these so callers can match with errors.Is.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrPaymentFailed  = errors.New("payment failed")
	ErrNotImplemented = errors.New("not implemented")
	ErrBadGateway     = errors.New("bad gateway")
)

type kind struct {
	sentinel error
	status   int
	code     string
	message  string
}

// kinds is consulted in order for errors that are not an *AppError.
var kinds = []kind{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", ""},
	{ErrPaymentFailed, http.StatusUnprocessableEntity, "PAYMENT_FAILED", "payment failed"},
	{ErrNotImplemented, http.StatusNotImplemented, "NOT_IMPLEMENTED", "operation not implemented"},
	{ErrBadGateway, http.StatusBadGateway, "BAD_GATEWAY", "upstream returned an invalid response"},
	{ErrServiceUnavail, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service unavailable"},
}

// AppError is an error with the HTTP status and machine-readable code it is
// reported with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(status int, code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

// NotFound reports a missing resource, e.g. an unknown connector name.
func NotFound(resource, id string) *AppError {
	return newAppError(http.StatusNotFound, "NOT_FOUND",
		fmt.Sprintf("%s with id %s not found", resource, id), ErrNotFound)
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return newAppError(http.StatusBadRequest, "INVALID_INPUT", message, ErrInvalidInput)
}

// PaymentMethodNotSupported creates a 400 error for a payment method the
// selected connector cannot process.
func PaymentMethodNotSupported(message string) *AppError {
	return newAppError(http.StatusBadRequest, "PAYMENT_METHOD_NOT_SUPPORTED", message, ErrInvalidInput)
}

// Internal hides err behind a generic 500 message.
func Internal(err error) *AppError {
	return newAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred", err)
}

// ConnectorMisconfigured creates a 500 error for a connector whose credentials
// could not be used.
func ConnectorMisconfigured(err error) *AppError {
	return newAppError(http.StatusInternalServerError, "CONNECTOR_MISCONFIGURED",
		"payment connector is not configured correctly", err)
}

// PaymentFailed creates a 422 error for a declined or failed attempt.
func PaymentFailed(message string) *AppError {
	return newAppError(http.StatusUnprocessableEntity, "PAYMENT_FAILED", message, ErrPaymentFailed)
}

// NotImplemented creates a 501 error for an operation a connector does not offer yet.
func NotImplemented(message string) *AppError {
	return newAppError(http.StatusNotImplemented, "NOT_IMPLEMENTED", message, ErrNotImplemented)
}

// BadGateway creates a 502 error for an upstream reply that could not be
// understood. The result matches both ErrBadGateway and err.
func BadGateway(message string, err error) *AppError {
	if err == nil {
		err = ErrBadGateway
	}
	return newAppError(http.StatusBadGateway, "BAD_GATEWAY", message, fmt.Errorf("%w: %w", ErrBadGateway, err))
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return newAppError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message, ErrServiceUnavail)
}

// Describe returns the status, code and client-facing message for err.
// Unclassified errors are reported as a 500 without exposing err's text.
func Describe(err error) (status int, code, message string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Code, appErr.Message
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			if k.message == "" {
				return k.status, k.code, err.Error()
			}
			return k.status, k.code, k.message
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	status, _, _ := Describe(err)
	return status
}
