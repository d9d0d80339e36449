// Package flow drives the navigation state machine for the session
// lifecycle: splash to login to guest or authenticated tabs, with the
// login modal overlay for guests attempting member-only actions.
package flow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/moimlabs/moim-go/internal/domain/display"
	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/domain/session"
)

// State is the machine's externally visible state. It is a value:
// readers get snapshots, never shared mutable structure. The Session is
// owned by the machine and exposed read-only.
type State struct {
	Phase Phase
	// TempToken is set during pending registration.
	TempToken string
	// Session is the current session value.
	Session session.Session
	// LoginModal is true when the login modal is pushed over the guest
	// tabs.
	LoginModal bool
}

// SessionGateway is the subset of the session gateway the machine
// drives. Implemented by service.SessionGateway; defined here so tests
// can substitute a scripted gateway.
type SessionGateway interface {
	SignInWithProvider(ctx context.Context, p provider.Provider, anchor provider.Anchor) (provider.Credential, *session.Error)
	ExchangeForSession(ctx context.Context, cred provider.Credential) (session.Session, *session.Error)
	CompleteSignup(ctx context.Context, tempToken, nickname string, marketingOptIn bool) (session.Session, *session.Error)
	Logout(ctx context.Context) *session.Error
	Withdraw(ctx context.Context) *session.Error
	HasValidSession() bool
	RestoredSession() (session.Session, bool)
}

// Machine serializes all session mutations through one event loop: no
// two session-mutating operations run concurrently against the same
// Session value. Gateway calls run on their own goroutines (network I/O
// must not stall the loop); their results come back as internal events.
type Machine struct {
	gateway SessionGateway
	logger  *slog.Logger

	events chan Event
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu    sync.RWMutex
	state State

	states        chan State
	notifications chan display.Intent

	// loginCancel cancels the in-flight login attempt, if any. loginGen
	// numbers attempts so a superseded attempt's result can be told apart
	// from the live one's. Only the event loop touches either.
	loginCancel context.CancelFunc
	loginGen    uint64
}

// NewMachine creates a Machine over the given gateway. Call Start to
// begin processing events and Stop to shut the loop down.
func NewMachine(gateway SessionGateway, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		gateway:       gateway,
		logger:        logger,
		events:        make(chan Event, 16),
		stop:          make(chan struct{}),
		states:        make(chan State, 16),
		notifications: make(chan display.Intent, 16),
		state:         State{Phase: PhaseSplash, Session: session.Guest()},
	}
}

// Start launches the event loop. The loop exits when ctx is cancelled or
// Stop is called.
func (m *Machine) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-ctx.Done():
				m.cancelLogin()
				return
			case <-m.stop:
				m.cancelLogin()
				return
			case ev := <-m.events:
				m.handle(ctx, ev)
			}
		}
	}()
}

// Stop stops the event loop and waits for it to exit. Safe to call
// multiple times.
func (m *Machine) Stop() {
	m.once.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()
}

// Dispatch enqueues an event for the loop. Events are processed in
// dispatch order.
func (m *Machine) Dispatch(ev Event) {
	select {
	case m.events <- ev:
	case <-m.stop:
	}
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// States returns the channel of published state snapshots. Slow readers
// miss intermediate states, never current ones: the channel is drained
// of its oldest entry when full.
func (m *Machine) States() <-chan State {
	return m.states
}

// Notifications returns the channel of display intents produced by
// failed transitions.
func (m *Machine) Notifications() <-chan display.Intent {
	return m.notifications
}

// handle processes a single event against the current state. Runs only
// on the event loop.
func (m *Machine) handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case FinishInit:
		m.handleFinishInit()
	case LoginRequested:
		m.handleLoginRequested(ctx, ev)
	case SkipRequested:
		m.handleSkipRequested()
	case SignupRequested:
		m.handleSignupRequested(ctx, ev)
	case MemberActionAttempted:
		m.handleMemberActionAttempted()
	case LogoutConfirmed:
		m.handleTeardown(ctx, false)
	case WithdrawalConfirmed:
		m.handleTeardown(ctx, true)
	case SessionExpired:
		m.handleSessionExpired(ctx)
	case loginFinished:
		m.handleLoginFinished(ev)
	case signupFinished:
		m.handleSignupFinished(ev)
	case teardownFinished:
		m.handleTeardownFinished(ev)
	default:
		m.logger.Warn("unhandled event", "event", ev)
	}
}

func (m *Machine) handleFinishInit() {
	if m.State().Phase != PhaseSplash {
		return
	}
	// Auto-login restores the previous session without a round-trip;
	// server-side validity is checked lazily by the first API call.
	if restored, ok := m.gateway.RestoredSession(); ok {
		m.publish(State{Phase: PhaseAuthenticatedTabs, Session: restored})
		return
	}
	m.publish(State{Phase: PhaseLogin, Session: session.Guest()})
}

func (m *Machine) handleLoginRequested(ctx context.Context, ev LoginRequested) {
	cur := m.State()
	fromModal := cur.Phase == PhaseGuestTabs && cur.LoginModal
	if cur.Phase != PhaseLogin && !fromModal {
		return
	}

	// A new attempt supersedes the one in flight.
	m.cancelLogin()
	loginCtx, cancel := context.WithCancel(ctx)
	m.loginCancel = cancel
	m.loginGen++
	gen := m.loginGen

	go func() {
		cred, sessErr := m.gateway.SignInWithProvider(loginCtx, ev.Provider, ev.Anchor)
		if sessErr != nil {
			m.Dispatch(loginFinished{gen: gen, err: sessErr})
			return
		}
		sess, sessErr := m.gateway.ExchangeForSession(loginCtx, cred)
		m.Dispatch(loginFinished{gen: gen, session: sess, err: sessErr})
	}()
}

func (m *Machine) handleLoginFinished(ev loginFinished) {
	// A superseded attempt's result must not touch the live attempt's
	// bookkeeping or surface anything to the user.
	if ev.gen != m.loginGen {
		return
	}
	m.cancelLogin()
	if ev.err != nil {
		m.notify(ev.err)
		return
	}

	if ev.session.IsPendingRegistration() {
		m.publish(State{Phase: PhasePendingRegistration, TempToken: ev.session.TempToken, Session: ev.session})
		return
	}

	// Modal completion replaces the guest tabs underneath it.
	m.publish(State{Phase: PhaseAuthenticatedTabs, Session: ev.session})
}

func (m *Machine) handleSkipRequested() {
	cur := m.State()
	switch {
	case cur.Phase == PhaseLogin:
		m.publish(State{Phase: PhaseGuestTabs, Session: session.Guest()})
	case cur.Phase == PhaseGuestTabs && cur.LoginModal:
		// Dismissing the modal pops back to the origin, still guest.
		cur.LoginModal = false
		m.publish(cur)
	}
}

func (m *Machine) handleSignupRequested(ctx context.Context, ev SignupRequested) {
	cur := m.State()
	if cur.Phase != PhasePendingRegistration {
		return
	}
	tempToken := cur.TempToken
	go func() {
		sess, sessErr := m.gateway.CompleteSignup(ctx, tempToken, ev.Nickname, ev.MarketingOptIn)
		m.Dispatch(signupFinished{session: sess, err: sessErr})
	}()
}

func (m *Machine) handleSignupFinished(ev signupFinished) {
	if ev.err != nil {
		m.notify(ev.err)
		return
	}
	m.publish(State{Phase: PhaseAuthenticatedTabs, Session: ev.session})
}

func (m *Machine) handleMemberActionAttempted() {
	cur := m.State()
	if cur.Phase != PhaseGuestTabs || cur.LoginModal {
		return
	}
	cur.LoginModal = true
	m.publish(cur)
}

func (m *Machine) handleTeardown(ctx context.Context, withdrawal bool) {
	if m.State().Phase != PhaseAuthenticatedTabs {
		return
	}
	go func() {
		var sessErr *session.Error
		if withdrawal {
			sessErr = m.gateway.Withdraw(ctx)
		} else {
			sessErr = m.gateway.Logout(ctx)
		}
		m.Dispatch(teardownFinished{err: sessErr, withdrawal: withdrawal})
	}()
}

func (m *Machine) handleTeardownFinished(ev teardownFinished) {
	if ev.err != nil {
		m.notify(ev.err)
	}
	// Local teardown always succeeded by this point; the session is
	// guest regardless of the server call's outcome. Withdrawal forces
	// re-auth by auto-pushing the login modal.
	m.publish(State{
		Phase:      PhaseGuestTabs,
		Session:    session.Guest(),
		LoginModal: ev.withdrawal,
	})
}

func (m *Machine) handleSessionExpired(ctx context.Context) {
	if m.State().Phase != PhaseAuthenticatedTabs {
		return
	}
	go func() {
		// Best-effort server logout; local teardown is what matters.
		if sessErr := m.gateway.Logout(ctx); sessErr != nil {
			m.logger.Warn("teardown after expiry failed", "error", sessErr)
		}
	}()
	m.publish(State{Phase: PhaseLogin, Session: session.Guest()})
}

// cancelLogin cancels the in-flight login attempt, if any. Runs only on
// the event loop.
func (m *Machine) cancelLogin() {
	if m.loginCancel != nil {
		m.loginCancel()
		m.loginCancel = nil
	}
}

// publish replaces the current state and emits it to subscribers.
func (m *Machine) publish(next State) {
	m.mu.Lock()
	m.state = next
	m.mu.Unlock()

	for {
		select {
		case m.states <- next:
			return
		default:
			// Drop the oldest snapshot so the newest always fits.
			select {
			case <-m.states:
			default:
			}
		}
	}
}

// notify translates a session error into a display intent and emits it.
// Errors never cause a transition by themselves.
func (m *Machine) notify(err *session.Error) {
	intent := display.FromError(m.logger, err)
	if intent.Style == display.StyleSilent {
		return
	}
	select {
	case m.notifications <- intent:
	default:
		m.logger.Warn("notification dropped, subscriber too slow", "message", intent.Message)
	}
}
