// Package session contains the client-side session record, the domain
// error vocabulary, and the translations that turn provider-SDK and
// transport failures into it.
package session

import (
	"github.com/moimlabs/moim-go/internal/domain/provider"
)

// UserInfo is the profile carried by an authenticated session. It is
// owned exclusively by Session and has no independent lifecycle.
type UserInfo struct {
	UserID                 string
	Email                  string
	Nickname               string
	ProfileImageURL        string
	Provider               provider.Provider
	DeactivatedWithinGrace bool
}

// Session is the authoritative client-side session record. It is an
// immutable value: replaced wholesale on login, signup, logout, and
// expiry, never mutated field by field.
//
// Empty token strings mean "absent". A session with only a temp token is
// in the pending-registration sub-state: past provider sign-in, before
// the server-side account is finalized. That is a distinct sub-state, not
// a guest.
type Session struct {
	AccessToken  string
	RefreshToken string
	TempToken    string
	IsNewUser    bool
	User         *UserInfo
}

// Guest returns the unauthenticated session all processes start in.
func Guest() Session {
	return Session{}
}

// PendingRegistration returns the sub-state session issued for a
// not-yet-registered user.
func PendingRegistration(tempToken string) Session {
	return Session{TempToken: tempToken, IsNewUser: true}
}

// Authenticated returns a fully signed-in session.
func Authenticated(accessToken, refreshToken string, user *UserInfo) Session {
	return Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}
}

// IsGuest reports whether the session is unauthenticated. By invariant
// this is exactly "no access token".
func (s Session) IsGuest() bool {
	return s.AccessToken == ""
}

// IsPendingRegistration reports whether the session is awaiting signup
// completion.
func (s Session) IsPendingRegistration() bool {
	return s.AccessToken == "" && s.TempToken != ""
}

// StoredCredentials is the persisted subset of a session. It exists if
// and only if a prior successful login saved with auto-login enabled.
type StoredCredentials struct {
	AccessToken  string
	RefreshToken string
	Provider     provider.Provider
	AutoLogin    bool
}
