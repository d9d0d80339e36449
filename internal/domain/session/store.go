package session

import (
	"github.com/moimlabs/moim-go/internal/domain/provider"
)

// CredentialStore persists the credential subset of a session between
// process runs. This interface is defined in the domain to avoid
// circular imports. Implementations: file+sqlite keystore (prod),
// in-memory (test).
//
// The store is the single source of truth for persisted credentials and
// must serialize its own reads and writes: no torn reads across
// Save/Clear. Read failures from the backing secure store are reported
// as "absent" (zero value), mirroring a best-effort cache.
type CredentialStore interface {
	// Save overwrites the persisted tokens and provider, and enables
	// auto-login. Pre-existing values under the same keys are replaced.
	Save(accessToken, refreshToken string, p provider.Provider) error

	// AccessToken returns the persisted access token, or "" if absent.
	AccessToken() string

	// RefreshToken returns the persisted refresh token, or "" if absent.
	RefreshToken() string

	// Provider returns the persisted provider, or "" if absent.
	Provider() provider.Provider

	// Clear removes the tokens, the provider, and the auto-login flag.
	// Callers observe no partial state: either everything is removed or
	// the explicit error is surfaced. Idempotent.
	Clear() error

	// SetAutoLogin flips the non-secret auto-login preference.
	SetAutoLogin(enabled bool) error

	// AutoLogin reports the auto-login preference. Defaults to false.
	AutoLogin() bool
}
