package memory

import (
	"errors"
	"testing"

	"github.com/moimlabs/moim-go/internal/domain/provider"
)

func TestCredentialStore_SaveAndLoad(t *testing.T) {
	store := NewCredentialStore()

	if err := store.Save("AT1", "RT1", provider.Google); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := store.AccessToken(); got != "AT1" {
		t.Errorf("AccessToken() = %q, want %q", got, "AT1")
	}
	if got := store.RefreshToken(); got != "RT1" {
		t.Errorf("RefreshToken() = %q, want %q", got, "RT1")
	}
	if got := store.Provider(); got != provider.Google {
		t.Errorf("Provider() = %q, want %q", got, provider.Google)
	}
	if !store.AutoLogin() {
		t.Error("AutoLogin() = false, want true after save")
	}
}

func TestCredentialStore_Clear(t *testing.T) {
	store := NewCredentialStore()
	if err := store.Save("AT1", "RT1", provider.Kakao); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := store.AccessToken(); got != "" {
		t.Errorf("AccessToken() after clear = %q, want empty", got)
	}
	if store.AutoLogin() {
		t.Error("AutoLogin() after clear = true, want false")
	}

	// Idempotent.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
}

func TestCredentialStore_InjectedFailures(t *testing.T) {
	saveErr := errors.New("save boom")
	clearErr := errors.New("clear boom")
	store := NewCredentialStore()
	store.SaveErr = saveErr
	store.ClearErr = clearErr

	if err := store.Save("AT1", "RT1", provider.Apple); !errors.Is(err, saveErr) {
		t.Errorf("Save() error = %v, want injected error", err)
	}
	if err := store.Clear(); !errors.Is(err, clearErr) {
		t.Errorf("Clear() error = %v, want injected error", err)
	}
}

func TestCredentialStore_SetAutoLogin(t *testing.T) {
	store := NewCredentialStore()
	if err := store.SetAutoLogin(true); err != nil {
		t.Fatalf("SetAutoLogin() error = %v", err)
	}
	if !store.AutoLogin() {
		t.Error("AutoLogin() = false, want true")
	}
	if err := store.SetAutoLogin(false); err != nil {
		t.Fatalf("SetAutoLogin(false) error = %v", err)
	}
	if store.AutoLogin() {
		t.Error("AutoLogin() = true, want false")
	}
}
