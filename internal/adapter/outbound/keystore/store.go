package keystore

import (
	"errors"
	"log/slog"

	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/domain/session"
)

// prefKeyAutoLogin is the preference key for the auto-login flag.
const prefKeyAutoLogin = "autoLoginEnabled"

// Store persists session credentials: tokens and provider in the secure
// secrets file, the auto-login flag in the preference database.
type Store struct {
	secrets *secretsFile
	prefs   *PrefStore
	logger  *slog.Logger
}

// New creates a credential store over the given secrets file path and an
// already-open preference store.
func New(secretsPath string, prefs *PrefStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		secrets: newSecretsFile(secretsPath, logger),
		prefs:   prefs,
		logger:  logger,
	}
}

// Save overwrites the persisted tokens and provider, and enables
// auto-login. A save only ever happens after a fully successful exchange,
// never mid-flight.
func (s *Store) Save(accessToken, refreshToken string, p provider.Provider) error {
	if err := s.secrets.save(accessToken, refreshToken, p); err != nil {
		return err
	}
	return s.prefs.SetBool(prefKeyAutoLogin, true)
}

// AccessToken returns the persisted access token, or "" if absent.
func (s *Store) AccessToken() string {
	return s.secrets.load().AccessToken
}

// RefreshToken returns the persisted refresh token, or "" if absent.
func (s *Store) RefreshToken() string {
	return s.secrets.load().RefreshToken
}

// Provider returns the persisted provider, or "" if absent.
func (s *Store) Provider() provider.Provider {
	return provider.Provider(s.secrets.load().Provider)
}

// Clear removes the tokens, the provider, and the auto-login flag.
// Both backing stores are attempted regardless of individual failures so
// callers never observe a silent partial clear; any failure is surfaced.
// Idempotent: clearing an already-empty store succeeds.
func (s *Store) Clear() error {
	return errors.Join(
		s.secrets.clear(),
		s.prefs.Delete(prefKeyAutoLogin),
	)
}

// SetAutoLogin flips the non-secret auto-login preference.
func (s *Store) SetAutoLogin(enabled bool) error {
	return s.prefs.SetBool(prefKeyAutoLogin, enabled)
}

// AutoLogin reports the auto-login preference. Read failures are treated
// as "disabled" to match the store's best-effort read policy.
func (s *Store) AutoLogin() bool {
	v, err := s.prefs.GetBool(prefKeyAutoLogin)
	if err != nil {
		s.logger.Warn("auto-login preference unreadable, treating as disabled", "error", err)
		return false
	}
	return v
}

// Compile-time interface verification.
var _ session.CredentialStore = (*Store)(nil)
