// Package providersdk adapts third-party sign-in SDKs to the
// provider.Authenticator port. The native pickers live in the mobile
// shells; this package covers the environments the Go client runs in.
package providersdk

import (
	"context"
	"log/slog"

	"github.com/moimlabs/moim-go/internal/domain/provider"
)

// missingTokenCodes maps each provider to the SDK error code its native
// SDK raises when no usable credential is present. The classifier turns
// these into account-problem session errors.
var missingTokenCodes = map[provider.Provider]string{
	provider.Google: "hasNoAuthInKeychain",
	provider.Apple:  "failed",
	provider.Kakao:  "InvalidGrant",
}

// TokenAuthenticator satisfies the Authenticator port with a
// pre-obtained provider token, the way headless and CLI environments
// sign in: the user completes the provider flow elsewhere and hands the
// resulting token over.
type TokenAuthenticator struct {
	provider    provider.Provider
	accessToken string
	idToken     string
	logger      *slog.Logger
}

// NewTokenAuthenticator creates an authenticator for the given provider
// and pre-obtained tokens. idToken may be empty.
func NewTokenAuthenticator(p provider.Provider, accessToken, idToken string, logger *slog.Logger) *TokenAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenAuthenticator{
		provider:    p,
		accessToken: accessToken,
		idToken:     idToken,
		logger:      logger,
	}
}

// SignIn returns the pre-obtained credential. The anchor is unused here
// (there is no native UI to present), but a missing token surfaces as the
// SDK error the provider's native SDK would raise.
func (a *TokenAuthenticator) SignIn(ctx context.Context, anchor provider.Anchor) (provider.Credential, error) {
	if err := ctx.Err(); err != nil {
		return provider.Credential{}, err
	}
	if a.accessToken == "" {
		return provider.Credential{}, &provider.SDKError{
			Provider:    a.provider,
			Code:        missingTokenCodes[a.provider],
			Description: "no provider token available",
		}
	}
	a.logger.Debug("provider sign-in", "provider", string(a.provider))
	return provider.Credential{
		Provider:    a.provider,
		AccessToken: a.accessToken,
		IDToken:     a.idToken,
	}, nil
}

// Compile-time interface verification.
var _ provider.Authenticator = (*TokenAuthenticator)(nil)

// Scripted satisfies the Authenticator port with a fixed outcome.
// For tests.
type Scripted struct {
	Credential provider.Credential
	Err        error
}

// SignIn returns the scripted outcome.
func (s *Scripted) SignIn(ctx context.Context, anchor provider.Anchor) (provider.Credential, error) {
	if err := ctx.Err(); err != nil {
		return provider.Credential{}, err
	}
	if s.Err != nil {
		return provider.Credential{}, s.Err
	}
	return s.Credential, nil
}

// Compile-time interface verification.
var _ provider.Authenticator = (*Scripted)(nil)
