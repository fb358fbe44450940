package connector

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying connector failures. Match with errors.Is.
var (
	ErrPaymentMethodNotSupported = errors.New("payment method not supported by this connector")
	ErrFailedToObtainAuthType    = errors.New("failed to obtain auth type")
	ErrNotImplemented            = errors.New("operation not implemented for this connector")
	ErrResponseDeserialization   = errors.New("failed to deserialize connector response")
	ErrRequestEncoding           = errors.New("failed to encode connector request")
)

// Error describes a failed connector operation. Kind is one of the sentinels
// above; Err is the underlying cause, if any.
type Error struct {
	Connector string
	Op        string
	Message   string
	Kind      error
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Connector, e.Op, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// PaymentMethodNotSupported reports a payment method variant the connector cannot build a request for.
func PaymentMethodNotSupported(connector, op, description string) *Error {
	return &Error{
		Connector: connector,
		Op:        op,
		Message:   "Current Payment Method - " + description,
		Kind:      ErrPaymentMethodNotSupported,
	}
}

// FailedToObtainAuthType reports an auth configuration variant the connector does not accept.
func FailedToObtainAuthType(connector, authType string) *Error {
	return &Error{
		Connector: connector,
		Op:        "auth",
		Message:   "unsupported auth type " + authType,
		Kind:      ErrFailedToObtainAuthType,
	}
}

// NotImplemented reports an operation the connector does not offer yet.
func NotImplemented(connector, op string) *Error {
	return &Error{
		Connector: connector,
		Op:        op,
		Kind:      ErrNotImplemented,
	}
}

// ResponseDeserialization reports a connector reply that could not be parsed.
func ResponseDeserialization(connector, op string, err error) *Error {
	return &Error{
		Connector: connector,
		Op:        op,
		Kind:      ErrResponseDeserialization,
		Err:       err,
	}
}

// RequestEncoding reports a request that could not be serialised.
func RequestEncoding(connector, op string, err error) *Error {
	return &Error{
		Connector: connector,
		Op:        op,
		Kind:      ErrRequestEncoding,
		Err:       err,
	}
}
