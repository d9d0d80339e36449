package session

import (
	"fmt"

	"github.com/moimlabs/moim-go/internal/domain/provider"
)

// ErrorKind enumerates the domain vocabulary of session failures. The
// set is closed: translators match it exhaustively, and new wire-level
// failure modes must be consciously classified rather than left to fall
// into KindUnknown.
type ErrorKind string

const (
	// KindSignInCancelled means the user dismissed the provider's
	// sign-in UI.
	KindSignInCancelled ErrorKind = "sign_in_cancelled"
	// KindAccountProblem means the provider account is unusable
	// (suspended, not registered, under review).
	KindAccountProblem ErrorKind = "account_problem"
	// KindPermissionRequired means the user declined a permission the
	// provider flow needs.
	KindPermissionRequired ErrorKind = "permission_required"
	// KindMissingProfileData means the provider returned a credential
	// without the profile fields signup requires.
	KindMissingProfileData ErrorKind = "missing_profile_data"
	// KindAPIError carries a server-issued business error code.
	KindAPIError ErrorKind = "api_error"
	// KindNetworkUnavailable means the server could not be reached or
	// the request timed out.
	KindNetworkUnavailable ErrorKind = "network_unavailable"
	// KindServerError means the server failed without a business code.
	KindServerError ErrorKind = "server_error"
	// KindCannotFindPresentationContext means no UI anchor was available
	// for the provider's sign-in flow.
	KindCannotFindPresentationContext ErrorKind = "cannot_find_presentation_context"
	// KindDependencyMissing means a required collaborator was not wired.
	KindDependencyMissing ErrorKind = "dependency_missing"
	// KindDataParsingFailed means a server payload could not be decoded.
	KindDataParsingFailed ErrorKind = "data_parsing_failed"
	// KindUnknown is the conscious catch-all for unclassified failures.
	KindUnknown ErrorKind = "unknown"
)

// Error is a session-domain failure. Kind is always set; the remaining
// fields are populated per kind (Provider for account and permission
// problems, Code for API errors).
type Error struct {
	Kind       ErrorKind
	Provider   provider.Provider
	Permission string
	Code       Code
	Message    string
	Cause      error
}

// Error returns the error message.
func (e *Error) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("session error [%s] code=%s: %s", e.Kind, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("session error [%s]: %s", e.Kind, e.Message)
	default:
		return fmt.Sprintf("session error [%s]", e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is against another *Error by kind, so callers can
// match e.g. errors.Is(err, session.ErrCancelled).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is matching.
var (
	ErrCancelled          = &Error{Kind: KindSignInCancelled}
	ErrNetworkUnavailable = &Error{Kind: KindNetworkUnavailable}
	ErrServer             = &Error{Kind: KindServerError}
)

// NewSignInCancelled reports a user-cancelled provider sign-in.
func NewSignInCancelled(p provider.Provider) *Error {
	return &Error{Kind: KindSignInCancelled, Provider: p}
}

// NewAccountProblem reports an unusable provider account.
func NewAccountProblem(p provider.Provider, msg string) *Error {
	return &Error{Kind: KindAccountProblem, Provider: p, Message: msg}
}

// NewPermissionRequired reports a declined provider permission.
func NewPermissionRequired(p provider.Provider, permission string) *Error {
	return &Error{Kind: KindPermissionRequired, Provider: p, Permission: permission}
}

// NewAPIError reports a server-issued business failure.
func NewAPIError(code Code, msg string) *Error {
	return &Error{Kind: KindAPIError, Code: code, Message: msg}
}

// NewNetworkUnavailable reports an unreachable server or timeout.
func NewNetworkUnavailable(cause error) *Error {
	return &Error{Kind: KindNetworkUnavailable, Cause: cause}
}

// NewServerError reports a server failure without a business code.
func NewServerError(msg string) *Error {
	return &Error{Kind: KindServerError, Message: msg}
}

// NewCannotFindPresentationContext reports a missing UI anchor.
func NewCannotFindPresentationContext(p provider.Provider) *Error {
	return &Error{Kind: KindCannotFindPresentationContext, Provider: p}
}

// NewDependencyMissing reports an unwired collaborator.
func NewDependencyMissing(what string) *Error {
	return &Error{Kind: KindDependencyMissing, Message: what}
}

// NewDataParsingFailed reports an undecodable server payload.
func NewDataParsingFailed(cause error) *Error {
	return &Error{Kind: KindDataParsingFailed, Cause: cause}
}

// NewUnknown reports an unclassified failure.
func NewUnknown(msg string, cause error) *Error {
	return &Error{Kind: KindUnknown, Message: msg, Cause: cause}
}
