package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("resource conflict")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrTransportFailure    = errors.New("transport failure")
	ErrInternal            = errors.New("internal error")
)

// UpstreamError is a non-2xx reply from the helpdesk API. The response
// arrived, so it is not a transport failure; the status code decides
// which domain sentinel it unwraps to.
type UpstreamError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the upstream status onto the domain sentinel so callers
// can match with errors.Is.
func (e *UpstreamError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrInvalidArgument
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrUpstreamUnavailable
	}
}

// NewUpstreamError creates an upstream error from a response status.
func NewUpstreamError(statusCode int, message string) *UpstreamError {
	return &UpstreamError{StatusCode: statusCode, Message: message}
}

// TransportError reports that no usable response was obtained from the
// upstream after the configured retry budget.
type TransportError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream unreachable after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap returns the final attempt's error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches the transport failure sentinel regardless of the
// underlying attempt error.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailure
}

// NewTransportError creates a transport error from the last attempt.
func NewTransportError(attempts int, err error) *TransportError {
	return &TransportError{Attempts: attempts, Err: err}
}

// GetStatusCode returns the appropriate HTTP status code for an error.
func GetStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrTransportFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
