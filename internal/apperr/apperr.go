// Package apperr defines the error kinds surfaced by the gateway and the
// single translation from a kind to an HTTP status code.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

// Kind classifies an application error
type Kind int

const (
	// KindInternal is an unexpected failure, such as a recovered panic
	KindInternal Kind = iota
	// KindValidation is a missing or malformed request field
	KindValidation
	// KindNotFound is an unknown route
	KindNotFound
	// KindStoreUnavailable is a connection-level failure talking to the store
	KindStoreUnavailable
	// KindStoreOperation is any other store-side failure
	KindStoreOperation
)

// String returns the name used in logs
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindStoreOperation:
		return "store_operation"
	default:
		return "internal"
	}
}

// Error is an error carrying a Kind and a user-facing message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error around err
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation is shorthand for New(KindValidation, message)
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// KindOf returns the kind of err, or KindInternal if err carries none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Classify maps a raw store error to a kind. Connection-level failures are
// KindStoreUnavailable; everything else is KindStoreOperation.
func Classify(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, net.ErrClosed):
		return KindStoreUnavailable
	default:
		return KindStoreOperation
	}
}

// HTTPStatus translates a kind to the response status code
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
