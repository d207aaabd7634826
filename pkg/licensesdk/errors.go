package licensesdk

import (
	"errors"
	"fmt"
)

// Kind classifies an APIError. Callers usually branch on it through the
// sentinel errors below with errors.Is.
type Kind int

const (
	KindNotAuthenticated Kind = iota + 1
	KindTokenExpired
	KindInvalidResponse
	KindAuthenticationFailure
	KindResourceNotFound
	KindValidationFailure
	KindGenericAPIFailure
	KindNetworkFailure
)

var kindNames = map[Kind]string{
	KindNotAuthenticated:      "not authenticated",
	KindTokenExpired:          "token expired",
	KindInvalidResponse:       "invalid response",
	KindAuthenticationFailure: "authentication failure",
	KindResourceNotFound:      "resource not found",
	KindValidationFailure:     "validation failure",
	KindGenericAPIFailure:     "api failure",
	KindNetworkFailure:        "network failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// ErrNotAuthenticated is matched when no token was ever set on the client.
	ErrNotAuthenticated = errors.New("licensesdk: not authenticated")

	// ErrTokenExpired is matched when the stored token is past its expiry.
	ErrTokenExpired = errors.New("licensesdk: token expired")

	// ErrInvalidResponse is matched when the server body is not valid JSON.
	ErrInvalidResponse = errors.New("licensesdk: invalid response")

	// ErrAuthenticationFailure is matched for 401/403 responses and for
	// network failures during Authenticate.
	ErrAuthenticationFailure = errors.New("licensesdk: authentication failure")

	// ErrResourceNotFound is matched for 404 responses carrying LICENSE_NOT_FOUND.
	ErrResourceNotFound = errors.New("licensesdk: resource not found")

	// ErrValidationFailure is matched for 400 responses.
	ErrValidationFailure = errors.New("licensesdk: validation failure")

	// ErrAPIFailure is matched for any other 4xx/5xx response.
	ErrAPIFailure = errors.New("licensesdk: api failure")

	// ErrNetworkFailure is matched when the transport could not complete the request.
	ErrNetworkFailure = errors.New("licensesdk: network failure")
)

var kindSentinels = map[Kind]error{
	KindNotAuthenticated:      ErrNotAuthenticated,
	KindTokenExpired:          ErrTokenExpired,
	KindInvalidResponse:       ErrInvalidResponse,
	KindAuthenticationFailure: ErrAuthenticationFailure,
	KindResourceNotFound:      ErrResourceNotFound,
	KindValidationFailure:     ErrValidationFailure,
	KindGenericAPIFailure:     ErrAPIFailure,
	KindNetworkFailure:        ErrNetworkFailure,
}

// ============================================================================
// APIError
// ============================================================================

// APIError is the single error type returned by Client operations. It carries
// a stable machine-readable Code next to the human-readable Message.
type APIError struct {
	Kind Kind

	// StatusCode is the HTTP status of the response, 0 when no response was received.
	StatusCode int

	// Code is the service error code (e.g. LICENSE_NOT_FOUND).
	Code string

	// Message is a human-readable description of the error.
	Message string

	// Details holds the raw error object for GenericAPIFailure.
	Details map[string]any

	// Body holds the raw response body for InvalidResponse.
	Body string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	return fmt.Sprintf("licensesdk: %s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *APIError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

func newAPIError(kind Kind, status int, code, message string) *APIError {
	return &APIError{
		Kind:       kind,
		StatusCode: status,
		Code:       code,
		Message:    message,
	}
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
