package session

import (
	"context"
	"errors"

	"github.com/moimlabs/moim-go/internal/transport"
)

// FromTransport translates a transport-layer failure into the session
// error vocabulary. Pure: no side effects, deterministic per input.
//
// The mapping is exhaustive over the transport taxonomy:
//
//	context cancellation          -> sign-in cancelled
//	no connection, timeout        -> network unavailable
//	decoding error                -> data parsing failed
//	status code with envelope     -> api error (code) or server error
//	invalid url/response, unknown -> unknown
//
// A nil input returns nil.
func FromTransport(err error) *Error {
	if err == nil {
		return nil
	}
	// Already translated upstream; pass through.
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr
	}
	// A request abandoned mid-flight (superseded login, navigation away)
	// is the caller's own doing, never a user-visible failure.
	if errors.Is(err, context.Canceled) {
		return NewSignInCancelled("")
	}

	switch {
	case errors.Is(err, transport.ErrNoConnection), errors.Is(err, transport.ErrTimeout):
		return NewNetworkUnavailable(err)
	case errors.Is(err, transport.ErrDecoding):
		return NewDataParsingFailed(err)
	}

	var statusErr *transport.StatusCodeError
	if errors.As(err, &statusErr) {
		if statusErr.Envelope != nil && statusErr.Envelope.Code != "" {
			return NewAPIError(Code(statusErr.Envelope.Code), statusErr.Envelope.Message)
		}
		var msg string
		if statusErr.Envelope != nil {
			msg = statusErr.Envelope.Message
		}
		return NewServerError(msg)
	}

	// invalid url, invalid response, unknown
	return NewUnknown(err.Error(), err)
}
