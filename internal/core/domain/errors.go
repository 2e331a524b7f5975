package domain

import (
	"errors"
	"fmt"
)

// Failure kinds reported by the facade. Match with errors.Is.
var (
	ErrTransport         = errors.New("transport failure")
	ErrValidation        = errors.New("request rejected by validation")
	ErrAuthentication    = errors.New("authentication failed")
	ErrConflict          = errors.New("resource already exists")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrNotFound          = errors.New("resource not found")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedResponse = errors.New("malformed response body")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Kind      error
	Operation string
	Status    int
	Detail    string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v (status %d)", e.Operation, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %v (status %d): %s", e.Operation, e.Kind, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error { return e.Kind }

// TransportError is a request that never produced a response: network
// failure, timeout, cancellation or an open circuit breaker.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Operation, ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }
