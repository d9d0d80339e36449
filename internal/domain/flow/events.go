package flow

import (
	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/domain/session"
)

// Event is a named occurrence dispatched to the state machine. UI code
// dispatches the exported events; the unexported ones carry the results
// of gateway calls back onto the serialized loop.
type Event interface {
	event()
}

// FinishInit signals that splash-time initialization completed.
type FinishInit struct{}

// LoginRequested asks for a provider sign-in. A login already in flight
// is cancelled in favor of this one.
type LoginRequested struct {
	Provider provider.Provider
	Anchor   provider.Anchor
}

// SkipRequested continues as a guest from the login screen, or dismisses
// the login modal.
type SkipRequested struct{}

// SignupRequested completes a pending registration with the chosen
// nickname.
type SignupRequested struct {
	Nickname       string
	MarketingOptIn bool
}

// MemberActionAttempted reports a guest trying a member-only action; it
// pushes the login modal over the guest tabs.
type MemberActionAttempted struct{}

// LogoutConfirmed reports the user confirming logout.
type LogoutConfirmed struct{}

// WithdrawalConfirmed reports the user confirming account deletion.
type WithdrawalConfirmed struct{}

// SessionExpired reports that the server rejected the current tokens.
type SessionExpired struct{}

func (FinishInit) event()            {}
func (LoginRequested) event()        {}
func (SkipRequested) event()         {}
func (SignupRequested) event()       {}
func (MemberActionAttempted) event() {}
func (LogoutConfirmed) event()       {}
func (WithdrawalConfirmed) event()   {}
func (SessionExpired) event()        {}

// loginFinished carries the result of sign-in + exchange back onto the
// serialized loop. gen identifies the attempt; results from superseded
// attempts are dropped.
type loginFinished struct {
	gen     uint64
	session session.Session
	err     *session.Error
}

// signupFinished carries the result of signup completion.
type signupFinished struct {
	session session.Session
	err     *session.Error
}

// teardownFinished carries the result of logout or withdrawal.
type teardownFinished struct {
	err        *session.Error
	withdrawal bool
}

func (loginFinished) event()    {}
func (signupFinished) event()   {}
func (teardownFinished) event() {}
