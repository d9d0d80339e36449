package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrInvalidURL is returned when a request URL cannot be constructed.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidResponse is returned when the server response is not a
	// valid HTTP response.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrDecoding is returned when a 2xx response body cannot be decoded.
	ErrDecoding = errors.New("decoding error")

	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("request timeout")

	// ErrNoConnection is returned when the server cannot be reached.
	ErrNoConnection = errors.New("no connection")
)

// Envelope is the server's standard JSON wrapper for error responses and
// the metadata half of success responses.
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InvalidURLError is returned when URL construction fails for an endpoint.
type InvalidURLError struct {
	// Endpoint is the base URL + path that failed to parse.
	Endpoint string
	// Cause is the underlying parse error.
	Cause error
}

// Error returns the error message.
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error.
func (e *InvalidURLError) Unwrap() error { return e.Cause }

// Is reports whether this error matches ErrInvalidURL.
func (e *InvalidURLError) Is(target error) bool { return target == ErrInvalidURL }

// InvalidResponseError is returned when the response body cannot be read.
type InvalidResponseError struct {
	// Cause is the underlying read error.
	Cause error
}

// Error returns the error message.
func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *InvalidResponseError) Unwrap() error { return e.Cause }

// Is reports whether this error matches ErrInvalidResponse.
func (e *InvalidResponseError) Is(target error) bool { return target == ErrInvalidResponse }

// DecodingError is returned when the response envelope cannot be decoded.
type DecodingError struct {
	// Cause is the underlying JSON decode error.
	Cause error
}

// Error returns the error message.
func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding error: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *DecodingError) Unwrap() error { return e.Cause }

// Is reports whether this error matches ErrDecoding.
func (e *DecodingError) Is(target error) bool { return target == ErrDecoding }

// StatusCodeError is returned for non-2xx responses, and for 2xx responses
// whose envelope reports success=false. A server-reported business failure
// riding on transport success is treated identically to a transport-level
// failure so callers deal with a single failure plane.
type StatusCodeError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Envelope is the decoded server error envelope, nil when the body
	// could not be decoded.
	Envelope *Envelope
}

// Error returns the error message.
func (e *StatusCodeError) Error() string {
	if e.Envelope != nil && e.Envelope.Code != "" {
		return fmt.Sprintf("server returned %d [%s]: %s", e.StatusCode, e.Envelope.Code, e.Envelope.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// TimeoutError is returned when the request deadline is exceeded.
type TimeoutError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error returns the error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error { return e.Cause }

// Is reports whether this error matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// NoConnectionError is returned when the server cannot be reached
// (DNS failure, connection refused, network down).
type NoConnectionError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error returns the error message.
func (e *NoConnectionError) Error() string {
	return fmt.Sprintf("no connection: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *NoConnectionError) Unwrap() error { return e.Cause }

// Is reports whether this error matches ErrNoConnection.
func (e *NoConnectionError) Is(target error) bool { return target == ErrNoConnection }

// UnknownError wraps a transport failure that fits no other category.
type UnknownError struct {
	// Cause is the unclassified underlying error.
	Cause error
}

// Error returns the error message.
func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown transport error: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *UnknownError) Unwrap() error { return e.Cause }

// IsRetryable reports whether a request that failed with err may be worth
// retrying: timeouts, connection failures, and 5xx responses. Advisory
// only; the pipeline itself never retries.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrNoConnection) {
		return true
	}
	var statusErr *StatusCodeError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return false
}
