package flow

// Phase is the top-level navigation state.
type Phase string

const (
	// PhaseSplash is the initial state while the process boots.
	PhaseSplash Phase = "splash"
	// PhaseLogin is the provider sign-in screen.
	PhaseLogin Phase = "login"
	// PhasePendingRegistration is the signup screen after a provider
	// sign-in that needs account finalization.
	PhasePendingRegistration Phase = "pending_registration"
	// PhaseGuestTabs is the tab shell in guest mode.
	PhaseGuestTabs Phase = "guest_tabs"
	// PhaseAuthenticatedTabs is the tab shell with a signed-in session.
	PhaseAuthenticatedTabs Phase = "authenticated_tabs"
)

// Screen identifies the view a state renders as.
type Screen string

const (
	ScreenSplash     Screen = "splash"
	ScreenLogin      Screen = "login"
	ScreenSignup     Screen = "signup"
	ScreenGuestHome  Screen = "guest_home"
	ScreenHome       Screen = "home"
	ScreenLoginModal Screen = "login_modal"
)

// ScreenFor maps a state to the screen that renders it. Pure: the
// mapping lives apart from the machine so view selection carries no
// transition logic.
func ScreenFor(s State) Screen {
	if s.LoginModal {
		return ScreenLoginModal
	}
	switch s.Phase {
	case PhaseSplash:
		return ScreenSplash
	case PhaseLogin:
		return ScreenLogin
	case PhasePendingRegistration:
		return ScreenSignup
	case PhaseGuestTabs:
		return ScreenGuestHome
	case PhaseAuthenticatedTabs:
		return ScreenHome
	default:
		return ScreenSplash
	}
}
