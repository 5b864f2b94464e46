package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind failure classes surfaced by the waitlist backend client
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetworkUnreachable
	KindTimeout
	KindUnauthorized
	KindForbidden
	KindServerError
	KindClientError
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	default:
		return "unknown"
	}
}

// APIError a failed backend call
type APIError struct {
	Kind   ErrorKind
	Status int
	// Message is the backend's own message/error field, if any
	Message string
	Op      string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf classifies err; non-API errors are KindUnknown
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports a 401 from the backend
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// Message renders err as the line shown to the user
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "An unexpected error occurred: " + err.Error()
	}

	switch apiErr.Kind {
	case KindTimeout:
		return "Connection timeout. Please check if the backend server is running"
	case KindNetworkUnreachable:
		return "Network error. Please ensure the backend server is running and accessible."
	}

	if apiErr.Message != "" {
		return apiErr.Message
	}

	switch apiErr.Kind {
	case KindUnauthorized:
		return "Session expired. Please login again."
	case KindForbidden:
		return "Access forbidden"
	case KindServerError:
		return fmt.Sprintf("Server error (%d)", apiErr.Status)
	case KindClientError:
		return fmt.Sprintf("Request rejected (%d)", apiErr.Status)
	default:
		if apiErr.Err != nil {
			return "An unexpected error occurred: " + apiErr.Err.Error()
		}
		return "An unexpected error occurred"
	}
}

// classifyStatus maps an HTTP status >= 400 to its kind
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status >= 500:
		return KindServerError
	case status >= 400:
		return KindClientError
	default:
		return KindUnknown
	}
}

// classifyTransport maps a transport-level error (no response) to its kind
func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindUnknown
	}
	return KindNetworkUnreachable
}
