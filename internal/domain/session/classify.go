package session

import (
	"context"
	"errors"

	"github.com/moimlabs/moim-go/internal/domain/provider"
)

// providerClassifier maps one provider's SDK error codes into the shared
// session error vocabulary. One implementation per provider, dispatching
// on the SDK's own code table.
type providerClassifier interface {
	classify(sdkErr *provider.SDKError) *Error
}

var classifiers = map[provider.Provider]providerClassifier{
	provider.Google: googleClassifier{},
	provider.Apple:  appleClassifier{},
	provider.Kakao:  kakaoClassifier{},
}

// ClassifyProvider translates a provider-SDK failure into the session
// error vocabulary. Pure: no side effects, deterministic per input.
// Unrecognized codes fall through to KindUnknown, carrying the SDK's
// description.
func ClassifyProvider(p provider.Provider, err error) *Error {
	if err == nil {
		return nil
	}
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr
	}
	if errors.Is(err, context.Canceled) {
		return NewSignInCancelled(p)
	}

	sdkErr, ok := provider.AsSDKError(err)
	if !ok {
		return NewUnknown(err.Error(), err)
	}
	c, ok := classifiers[sdkErr.Provider]
	if !ok {
		return NewUnknown(sdkErr.Error(), sdkErr)
	}
	return c.classify(sdkErr)
}

// googleClassifier handles the Google Sign-In SDK's error codes.
type googleClassifier struct{}

func (googleClassifier) classify(e *provider.SDKError) *Error {
	switch e.Code {
	case "-5", "canceled": // user closed the account picker
		return NewSignInCancelled(provider.Google)
	case "-4", "hasNoAuthInKeychain":
		return NewAccountProblem(provider.Google, e.Description)
	case "-2", "scopesRequired":
		return NewPermissionRequired(provider.Google, "profile")
	default:
		return NewUnknown(e.Description, e)
	}
}

// appleClassifier handles ASAuthorization error codes.
type appleClassifier struct{}

func (appleClassifier) classify(e *provider.SDKError) *Error {
	switch e.Code {
	case "1001", "canceled":
		return NewSignInCancelled(provider.Apple)
	case "1004", "failed":
		return NewAccountProblem(provider.Apple, e.Description)
	case "1003", "notHandled":
		return NewAccountProblem(provider.Apple, e.Description)
	case "1002", "invalidResponse":
		return NewDataParsingFailed(e)
	default:
		return NewUnknown(e.Description, e)
	}
}

// kakaoClassifier handles the Kakao Login SDK's error codes.
type kakaoClassifier struct{}

func (kakaoClassifier) classify(e *provider.SDKError) *Error {
	switch e.Code {
	case "Cancelled", "UserCancelled":
		return NewSignInCancelled(provider.Kakao)
	case "AccessDenied":
		return NewPermissionRequired(provider.Kakao, "account_email")
	case "AccountDoesNotExist", "Misconfigured", "InvalidGrant":
		return NewAccountProblem(provider.Kakao, e.Description)
	default:
		return NewUnknown(e.Description, e)
	}
}
