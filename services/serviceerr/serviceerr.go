// Package serviceerr defines the error taxonomy shared by all downstream
// HTTP service clients. A failed call is either a transport problem
// (network, timeout, non-2xx status) or a response that parsed but is
// missing the field the caller needs.
package serviceerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a service failure.
type Kind string

const (
	// KindTransport covers network errors, timeouts, and non-success HTTP statuses.
	KindTransport Kind = "transport"
	// KindUnexpectedFormat covers responses missing the expected success field.
	KindUnexpectedFormat Kind = "unexpected_format"
)

// Error is the single error type surfaced by service clients.
// Clients never retry; one failed call produces exactly one Error.
type Error struct {
	Service string
	Kind    Kind
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Service, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns a stable upper-snake identifier for structured logging.
func (e *Error) Code() string {
	return "SERVICE_" + strings.ToUpper(string(e.Kind))
}

// Transport wraps err as a transport-class failure of the named service.
func Transport(service string, err error) *Error {
	return &Error{Service: service, Kind: KindTransport, Err: err}
}

// Transportf builds a transport-class failure from a format string.
func Transportf(service, format string, args ...any) *Error {
	return Transport(service, fmt.Errorf(format, args...))
}

// UnexpectedFormat reports a response body missing the expected success field.
func UnexpectedFormat(service, detail string) *Error {
	return &Error{Service: service, Kind: KindUnexpectedFormat, Err: errors.New(detail)}
}

// KindOf returns the Kind of err if it is (or wraps) a service Error.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsTransport reports whether err is a transport-class service failure.
func IsTransport(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindTransport
}

// IsUnexpectedFormat reports whether err is a malformed-response service failure.
func IsUnexpectedFormat(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindUnexpectedFormat
}
