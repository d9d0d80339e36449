package flow

import (
	"testing"

	"github.com/moimlabs/moim-go/internal/domain/session"
)

func TestScreenFor(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Screen
	}{
		{
			name:  "splash",
			state: State{Phase: PhaseSplash},
			want:  ScreenSplash,
		},
		{
			name:  "login",
			state: State{Phase: PhaseLogin},
			want:  ScreenLogin,
		},
		{
			name:  "pending registration renders signup",
			state: State{Phase: PhasePendingRegistration, TempToken: "TT1"},
			want:  ScreenSignup,
		},
		{
			name:  "guest tabs",
			state: State{Phase: PhaseGuestTabs},
			want:  ScreenGuestHome,
		},
		{
			name:  "authenticated tabs",
			state: State{Phase: PhaseAuthenticatedTabs, Session: session.Authenticated("AT1", "RT1", nil)},
			want:  ScreenHome,
		},
		{
			name:  "login modal overlays guest tabs",
			state: State{Phase: PhaseGuestTabs, LoginModal: true},
			want:  ScreenLoginModal,
		},
		{
			name:  "unknown phase falls back to splash",
			state: State{Phase: Phase("bogus")},
			want:  ScreenSplash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScreenFor(tt.state); got != tt.want {
				t.Errorf("ScreenFor(%+v) = %s, want %s", tt.state, got, tt.want)
			}
		})
	}
}

func TestScreenFor_IsPure(t *testing.T) {
	s := State{Phase: PhaseGuestTabs, LoginModal: true}
	if ScreenFor(s) != ScreenFor(s) {
		t.Error("ScreenFor is not deterministic")
	}
}
