// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"sync"

	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/domain/session"
)

// CredentialStore implements session.CredentialStore with an in-memory
// value. Thread-safe for concurrent access. For development/testing only.
type CredentialStore struct {
	mu    sync.RWMutex
	creds session.StoredCredentials

	// SaveErr and ClearErr, when set, are returned by the corresponding
	// operations. Useful for failure-path tests.
	SaveErr  error
	ClearErr error
}

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Save overwrites the stored credentials and enables auto-login.
func (s *CredentialStore) Save(accessToken, refreshToken string, p provider.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.creds = session.StoredCredentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Provider:     p,
		AutoLogin:    true,
	}
	return nil
}

// AccessToken returns the stored access token, or "" if absent.
func (s *CredentialStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// RefreshToken returns the stored refresh token, or "" if absent.
func (s *CredentialStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.RefreshToken
}

// Provider returns the stored provider, or "" if absent.
func (s *CredentialStore) Provider() provider.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Provider
}

// Clear resets the store to empty. Idempotent.
func (s *CredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.creds = session.StoredCredentials{}
	return nil
}

// SetAutoLogin flips the auto-login flag.
func (s *CredentialStore) SetAutoLogin(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.AutoLogin = enabled
	return nil
}

// AutoLogin reports the auto-login flag.
func (s *CredentialStore) AutoLogin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AutoLogin
}

// Compile-time interface verification.
var _ session.CredentialStore = (*CredentialStore)(nil)
