// Package provider contains the domain types for third-party identity
// providers (Google, Apple, Kakao) and the port their SDK adapters implement.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Provider identifies a third-party identity source.
type Provider string

const (
	// Google is Google Sign-In.
	Google Provider = "GOOGLE"
	// Apple is Sign in with Apple.
	Apple Provider = "APPLE"
	// Kakao is Kakao Login.
	Kakao Provider = "KAKAO"
)

// IsValid returns true if the provider is a known valid provider.
func (p Provider) IsValid() bool {
	switch p {
	case Google, Apple, Kakao:
		return true
	default:
		return false
	}
}

// Parse converts a user-supplied provider name into a Provider.
func Parse(s string) (Provider, error) {
	switch s {
	case "google", "GOOGLE":
		return Google, nil
	case "apple", "APPLE":
		return Apple, nil
	case "kakao", "KAKAO":
		return Kakao, nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// Credential is the result of a successful provider sign-in.
// AccessToken is the opaque bearer string the server exchanges for a
// session; IDToken, when present, is a JWT carrying profile hints.
type Credential struct {
	Provider    Provider
	AccessToken string
	IDToken     string
}

// Claims are profile hints extracted from a credential's ID token.
type Claims struct {
	Subject string
	Email   string
}

// Claims parses the ID token without signature verification and returns
// the subject and email claims. Verification is the server's job during
// the token exchange; the client only reads the claims for display.
// Returns zero Claims when no ID token is present.
func (c Credential) Claims() (Claims, error) {
	if c.IDToken == "" {
		return Claims{}, nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.IDToken, claims); err != nil {
		return Claims{}, fmt.Errorf("parse id token: %w", err)
	}
	var out Claims
	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	return out, nil
}

// Anchor is the presentation context a provider SDK needs to show its
// native sign-in UI. On mobile this is a window or activity handle; the
// CLI supplies a terminal anchor. A nil Anchor means no UI is available.
type Anchor interface {
	// Description identifies the anchor for logging.
	Description() string
}

// Authenticator is the port a provider SDK adapter implements.
// SignIn runs the provider's native sign-in flow against the given
// presentation anchor and returns the resulting credential.
type Authenticator interface {
	SignIn(ctx context.Context, anchor Anchor) (Credential, error)
}

// SDKError is the normalized shape of a provider SDK failure: a
// provider-specific code plus a human-readable description. Adapters wrap
// their SDK's native errors into this type so the classifier can dispatch
// on the code.
type SDKError struct {
	Provider    Provider
	Code        string
	Description string
	Cause       error
}

// Error returns the error message.
func (e *SDKError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s sdk [%s]: %s", e.Provider, e.Code, e.Description)
	}
	return fmt.Sprintf("%s sdk [%s]", e.Provider, e.Code)
}

// Unwrap returns the underlying SDK error.
func (e *SDKError) Unwrap() error {
	return e.Cause
}

// AsSDKError extracts an *SDKError from an error chain.
func AsSDKError(err error) (*SDKError, bool) {
	var sdkErr *SDKError
	if errors.As(err, &sdkErr) {
		return sdkErr, true
	}
	return nil, false
}
