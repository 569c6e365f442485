// Package apierror provides the typed error results returned by every
// service operation and the canonical JSON envelope for 4xx/5xx responses.
// All errors crossing the HTTP boundary go through this package so that
// internal details (stack traces, DB errors) are never leaked to clients.
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for HTTP mapping and caller branching.
type Kind string

const (
	KindNotFound     Kind = "not_found"     // no session/sale for the given keys
	KindInvalidState Kind = "invalid_state" // state machine rejects the operation
	KindUnauthorized Kind = "unauthorized"  // comercio mismatch between caller and record
	KindValidation   Kind = "validation"    // bad input (missing fields, non-positive amounts)
	KindRateLimited  Kind = "rate_limited"  // too many requests from one client
	KindInternal     Kind = "internal"      // infrastructure failure — generic message only
)

// Error is the canonical error envelope. Detail is safe to surface to
// clients for every kind except KindInternal.
type Error struct {
	Kind   Kind              `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string { return e.Detail }

func NotFound(detail string) *Error     { return &Error{Kind: KindNotFound, Detail: detail} }
func InvalidState(detail string) *Error { return &Error{Kind: KindInvalidState, Detail: detail} }
func Unauthorized(detail string) *Error { return &Error{Kind: KindUnauthorized, Detail: detail} }
func Validation(detail string) *Error   { return &Error{Kind: KindValidation, Detail: detail} }
func RateLimited(detail string) *Error  { return &Error{Kind: KindRateLimited, Detail: detail} }

// ValidationFields wraps per-field validator errors.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Detail: "Error de validacion", Fields: fields}
}

// Internal returns the generic infrastructure-failure envelope. The
// underlying cause must be logged by the caller, never sent to the client.
func Internal() *Error {
	return &Error{Kind: KindInternal, Detail: "Error interno del servidor"}
}

// From normalizes any error into an *Error. Unknown errors (gorm, redis,
// driver failures) collapse into the generic internal envelope.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal()
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// HTTPStatus maps the error kind to its response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
