// Package service wires the domain together: the session gateway drives
// the two-phase login protocol against the Moim API.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/domain/session"
	"github.com/moimlabs/moim-go/internal/transport"
)

// API paths for the session protocol.
const (
	pathSNSLogin      = "/api/auth/sns-login"
	pathLogout        = "/api/auth/logout"
	pathUser          = "/api/user"
	pathNicknameCheck = "/api/user/nickname/check"
)

// SessionGateway performs the client half of the session protocol:
// provider sign-in, server token exchange, signup completion, logout,
// and the local session-validity check.
type SessionGateway struct {
	pipeline       *transport.Pipeline
	store          session.CredentialStore
	authenticators map[provider.Provider]provider.Authenticator
	logger         *slog.Logger
}

// NewSessionGateway creates a SessionGateway. The authenticators map
// holds one provider.Authenticator per supported provider.
func NewSessionGateway(
	pipeline *transport.Pipeline,
	store session.CredentialStore,
	authenticators map[provider.Provider]provider.Authenticator,
	logger *slog.Logger,
) *SessionGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionGateway{
		pipeline:       pipeline,
		store:          store,
		authenticators: authenticators,
		logger:         logger,
	}
}

// loginPayload is the data half of the login and signup envelopes.
type loginPayload struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TempToken    string       `json:"tempToken"`
	IsNewUser    bool         `json:"isNewUser"`
	UserInfo     *userPayload `json:"userInfo"`
}

type userPayload struct {
	UserID                 string `json:"userId"`
	Email                  string `json:"email"`
	Nickname               string `json:"nickname"`
	ProfileImageURL        string `json:"profileImageUrl"`
	SNSProvider            string `json:"snsProvider"`
	DeactivatedWithinGrace bool   `json:"deactivatedWithinGrace"`
}

func (p *userPayload) toDomain() *session.UserInfo {
	if p == nil {
		return nil
	}
	return &session.UserInfo{
		UserID:                 p.UserID,
		Email:                  p.Email,
		Nickname:               p.Nickname,
		ProfileImageURL:        p.ProfileImageURL,
		Provider:               provider.Provider(p.SNSProvider),
		DeactivatedWithinGrace: p.DeactivatedWithinGrace,
	}
}

// SignInWithProvider runs the named provider's sign-in flow against the
// given presentation anchor and returns the resulting credential.
// Fails with the presentation-context error when no anchor is available,
// before the SDK is ever invoked.
func (g *SessionGateway) SignInWithProvider(ctx context.Context, p provider.Provider, anchor provider.Anchor) (provider.Credential, *session.Error) {
	if anchor == nil {
		return provider.Credential{}, session.NewCannotFindPresentationContext(p)
	}
	auth, ok := g.authenticators[p]
	if !ok {
		return provider.Credential{}, session.NewDependencyMissing("authenticator for " + string(p))
	}

	cred, err := auth.SignIn(ctx, anchor)
	if err != nil {
		return provider.Credential{}, session.ClassifyProvider(p, err)
	}
	return cred, nil
}

// ExchangeForSession POSTs the provider credential to the login endpoint.
// When the response carries a full token pair the tokens are persisted
// before the session is returned, so any observer of an authenticated
// session finds valid stored credentials. When it carries only a temp
// token, the returned session is the pending-registration sub-state and
// nothing is persisted yet.
func (g *SessionGateway) ExchangeForSession(ctx context.Context, cred provider.Credential) (session.Session, *session.Error) {
	payload, err := transport.DoJSON[loginPayload](ctx, g.pipeline, transport.Endpoint{
		Path:   pathSNSLogin,
		Method: http.MethodPost,
		Body: map[string]string{
			"accessToken": cred.AccessToken,
			"snsProvider": string(cred.Provider),
		},
	})
	if err != nil {
		return session.Guest(), session.FromTransport(err)
	}
	return g.adoptLoginPayload(payload, cred.Provider)
}

// CompleteSignup finalizes a pending registration. The temp token is the
// bearer for this one call; on success the issued tokens are persisted
// exactly as in ExchangeForSession.
func (g *SessionGateway) CompleteSignup(ctx context.Context, tempToken, nickname string, marketingOptIn bool) (session.Session, *session.Error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+tempToken)

	payload, err := transport.DoJSON[loginPayload](ctx, g.pipeline, transport.Endpoint{
		Path:   pathUser,
		Method: http.MethodPost,
		Header: header,
		Body: map[string]any{
			"nickname":       nickname,
			"marketingOptIn": marketingOptIn,
		},
	})
	if err != nil {
		return session.Guest(), session.FromTransport(err)
	}
	return g.adoptLoginPayload(payload, g.store.Provider())
}

// adoptLoginPayload turns a login/signup response into a session,
// persisting tokens when a full pair is present. The store write happens
// before the session value escapes this method.
func (g *SessionGateway) adoptLoginPayload(payload loginPayload, p provider.Provider) (session.Session, *session.Error) {
	switch {
	case payload.AccessToken != "" && payload.RefreshToken != "":
		if err := g.store.Save(payload.AccessToken, payload.RefreshToken, p); err != nil {
			return session.Guest(), session.NewUnknown("persist credentials", err)
		}
		sess := session.Authenticated(payload.AccessToken, payload.RefreshToken, payload.UserInfo.toDomain())
		sess.IsNewUser = payload.IsNewUser
		return sess, nil

	case payload.TempToken != "":
		return session.PendingRegistration(payload.TempToken), nil

	default:
		return session.Guest(), session.NewDataParsingFailed(nil)
	}
}

// nicknamePayload is the data half of the nickname-check envelope.
type nicknamePayload struct {
	Available bool `json:"available"`
}

// CheckNicknameAvailable reports whether the nickname is free. The
// duplicate-nickname business code is an answer, not a failure.
func (g *SessionGateway) CheckNicknameAvailable(ctx context.Context, nickname string) (bool, *session.Error) {
	query := url.Values{}
	query.Set("nickname", nickname)

	payload, err := transport.DoJSON[nicknamePayload](ctx, g.pipeline, transport.Endpoint{
		Path:  pathNicknameCheck,
		Query: query,
	})
	if err != nil {
		sessErr := session.FromTransport(err)
		if sessErr.Kind == session.KindAPIError && sessErr.Code == session.CodeNicknameDuplicated {
			return false, nil
		}
		return false, sessErr
	}
	return payload.Available, nil
}

// Logout POSTs the current tokens to the logout endpoint, then clears
// the credential store unconditionally. A client-side logout is never
// blocked by server unavailability: the server failure is logged and
// swallowed, local teardown always happens.
func (g *SessionGateway) Logout(ctx context.Context) *session.Error {
	err := g.pipeline.DoVoid(ctx, transport.Endpoint{
		Path:   pathLogout,
		Method: http.MethodPost,
		Body: map[string]string{
			"accessToken":  g.store.AccessToken(),
			"refreshToken": g.store.RefreshToken(),
		},
	})
	if err != nil {
		g.logger.Warn("server logout failed, clearing local session anyway", "error", err)
	}

	if err := g.store.Clear(); err != nil {
		return session.NewUnknown("clear credentials", err)
	}
	return nil
}

// Withdraw deletes the account server-side, then tears down the local
// session under the same unconditional policy as Logout.
func (g *SessionGateway) Withdraw(ctx context.Context) *session.Error {
	err := g.pipeline.DoVoid(ctx, transport.Endpoint{
		Path:   pathUser,
		Method: http.MethodDelete,
	})
	if err != nil {
		sessErr := session.FromTransport(err)
		// Local teardown still happens; the caller decides how to
		// surface the server failure.
		if clearErr := g.store.Clear(); clearErr != nil {
			g.logger.Error("credential clear failed after withdrawal", "error", clearErr)
		}
		return sessErr
	}

	if err := g.store.Clear(); err != nil {
		return session.NewUnknown("clear credentials", err)
	}
	return nil
}

// HasValidSession reports whether a persisted access token exists. This
// is a fast local presence check, not a verification of server-side
// validity.
func (g *SessionGateway) HasValidSession() bool {
	return g.store.AccessToken() != ""
}

// RestoredSession rebuilds a session from persisted credentials when
// auto-login is enabled and a token pair exists. The profile is not
// persisted; it is refetched by the first profile call after restore.
func (g *SessionGateway) RestoredSession() (session.Session, bool) {
	if !g.store.AutoLogin() {
		return session.Guest(), false
	}
	access, refresh := g.store.AccessToken(), g.store.RefreshToken()
	if access == "" || refresh == "" {
		return session.Guest(), false
	}
	return session.Authenticated(access, refresh, nil), true
}
