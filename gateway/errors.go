package gateway

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-bank-client/internal/errors"
	"github.com/tidwall/gjson"
)

var (
	// ErrAuthExpired matches every AuthExpiredError.
	ErrAuthExpired = apperrors.ErrAuthExpired
	// ErrPendingQueueFull is returned when too many calls are already waiting on a refresh.
	ErrPendingQueueFull = apperrors.ErrPendingQueueFull
)

// AuthExpiredError means the session could not be renewed for this call.
type AuthExpiredError struct {
	Method string
	Path   string
	// Cause is the refresh failure, or nil when the replay after a successful refresh was rejected again.
	Cause error
}

func (e *AuthExpiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, ErrAuthExpired, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, ErrAuthExpired)
}

func (e *AuthExpiredError) Is(target error) bool {
	return target == ErrAuthExpired
}

func (e *AuthExpiredError) Unwrap() error {
	return e.Cause
}

// BackendError is any non-2xx response other than a recovered 401. The body is passed
// through untouched for the caller to interpret.
type BackendError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *BackendError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("%s %s: backend returned %d: %s", e.Method, e.Path, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: backend returned %d", e.Method, e.Path, e.Status)
}

// StatusCode returns the HTTP status of the response.
func (e *BackendError) StatusCode() int {
	return e.Status
}

// JSON parses the response body.
func (e *BackendError) JSON() gjson.Result {
	return gjson.ParseBytes(e.Body)
}

// Message returns the backend's human readable message, if it sent one.
func (e *BackendError) Message() string {
	if !gjson.ValidBytes(e.Body) {
		return ""
	}
	doc := gjson.ParseBytes(e.Body)
	for _, key := range []string{"message", "detail", "error"} {
		if v := doc.Get(key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// NetworkError means no response was received at all.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
