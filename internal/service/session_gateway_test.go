package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moimlabs/moim-go/internal/adapter/outbound/memory"
	"github.com/moimlabs/moim-go/internal/adapter/outbound/providersdk"
	"github.com/moimlabs/moim-go/internal/domain/display"
	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/domain/session"
	"github.com/moimlabs/moim-go/internal/transport"
)

// testAnchor is a presentation anchor for tests.
type testAnchor struct{}

func (testAnchor) Description() string { return "test anchor" }

func successEnvelope(t *testing.T, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal envelope data: %v", err)
	}
	body, err := json.Marshal(map[string]any{
		"success": true,
		"code":    "OK",
		"message": "",
		"data":    json.RawMessage(raw),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return body
}

func newGateway(t *testing.T, handler http.Handler, auths map[provider.Provider]provider.Authenticator) (*SessionGateway, *memory.CredentialStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := memory.NewCredentialStore()
	pipeline := transport.NewPipeline(srv.URL, store)
	return NewSessionGateway(pipeline, store, auths, nil), store
}

func TestSignInWithProvider(t *testing.T) {
	cred := provider.Credential{Provider: provider.Kakao, AccessToken: "kakao-token"}
	auths := map[provider.Provider]provider.Authenticator{
		provider.Kakao: &providersdk.Scripted{Credential: cred},
	}
	gw, _ := newGateway(t, http.NotFoundHandler(), auths)

	got, sessErr := gw.SignInWithProvider(context.Background(), provider.Kakao, testAnchor{})
	if sessErr != nil {
		t.Fatalf("SignInWithProvider() error = %v", sessErr)
	}
	if got != cred {
		t.Errorf("credential = %+v, want %+v", got, cred)
	}
}

func TestSignInWithProvider_Failures(t *testing.T) {
	auths := map[provider.Provider]provider.Authenticator{
		provider.Kakao: &providersdk.Scripted{
			Err: &provider.SDKError{Provider: provider.Kakao, Code: "Cancelled"},
		},
	}

	tests := []struct {
		name     string
		provider provider.Provider
		anchor   provider.Anchor
		wantKind session.ErrorKind
	}{
		{
			name:     "nil anchor fails before the sdk runs",
			provider: provider.Kakao,
			anchor:   nil,
			wantKind: session.KindCannotFindPresentationContext,
		},
		{
			name:     "unconfigured provider is a missing dependency",
			provider: provider.Google,
			anchor:   testAnchor{},
			wantKind: session.KindDependencyMissing,
		},
		{
			name:     "sdk error is classified",
			provider: provider.Kakao,
			anchor:   testAnchor{},
			wantKind: session.KindSignInCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, _ := newGateway(t, http.NotFoundHandler(), auths)
			_, sessErr := gw.SignInWithProvider(context.Background(), tt.provider, tt.anchor)
			if sessErr == nil {
				t.Fatal("SignInWithProvider() error = nil, want error")
			}
			if sessErr.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", sessErr.Kind, tt.wantKind)
			}
		})
	}
}

func TestExchangeForSession_ExistingUser(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/sns-login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if body["accessToken"] != "kakao-token" || body["snsProvider"] != "KAKAO" {
			t.Errorf("request body = %v", body)
		}
		_, _ = w.Write(successEnvelope(t, map[string]any{
			"accessToken":  "AT1",
			"refreshToken": "RT1",
			"isNewUser":    false,
			"userInfo": map[string]any{
				"userId":      "u-1",
				"nickname":    "dotori",
				"snsProvider": "KAKAO",
			},
		}))
	})
	gw, store := newGateway(t, handler, nil)

	sess, sessErr := gw.ExchangeForSession(context.Background(), provider.Credential{
		Provider:    provider.Kakao,
		AccessToken: "kakao-token",
	})
	if sessErr != nil {
		t.Fatalf("ExchangeForSession() error = %v", sessErr)
	}
	if sess.IsGuest() || sess.IsPendingRegistration() {
		t.Errorf("session = %+v, want authenticated", sess)
	}
	if sess.User == nil || sess.User.Nickname != "dotori" {
		t.Errorf("User = %+v, want nickname dotori", sess.User)
	}

	// Tokens must already be persisted when the session is returned.
	if got := store.AccessToken(); got != "AT1" {
		t.Errorf("stored access token = %q, want %q", got, "AT1")
	}
	if got := store.Provider(); got != provider.Kakao {
		t.Errorf("stored provider = %q, want %q", got, provider.Kakao)
	}
	if !store.AutoLogin() {
		t.Error("AutoLogin() = false, want true after exchange")
	}
}

func TestExchangeForSession_NewUserPendingRegistration(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(successEnvelope(t, map[string]any{
			"tempToken": "TT1",
			"isNewUser": true,
		}))
	})
	gw, store := newGateway(t, handler, nil)

	sess, sessErr := gw.ExchangeForSession(context.Background(), provider.Credential{
		Provider:    provider.Google,
		AccessToken: "google-token",
	})
	if sessErr != nil {
		t.Fatalf("ExchangeForSession() error = %v", sessErr)
	}
	if !sess.IsPendingRegistration() {
		t.Fatalf("session = %+v, want pending registration", sess)
	}
	if sess.TempToken != "TT1" {
		t.Errorf("TempToken = %q, want %q", sess.TempToken, "TT1")
	}

	// Nothing persists until signup completes.
	if got := store.AccessToken(); got != "" {
		t.Errorf("stored access token = %q, want empty", got)
	}
	if store.AutoLogin() {
		t.Error("AutoLogin() = true, want false before signup completes")
	}
}

func TestExchangeForSession_EmptyPayload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(successEnvelope(t, map[string]any{}))
	})
	gw, _ := newGateway(t, handler, nil)

	_, sessErr := gw.ExchangeForSession(context.Background(), provider.Credential{Provider: provider.Apple})
	if sessErr == nil {
		t.Fatal("ExchangeForSession() error = nil, want error")
	}
	if sessErr.Kind != session.KindDataParsingFailed {
		t.Errorf("Kind = %s, want %s", sessErr.Kind, session.KindDataParsingFailed)
	}
}

func TestExchangeForSession_StoreFailureSurfaces(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(successEnvelope(t, map[string]any{
			"accessToken":  "AT1",
			"refreshToken": "RT1",
		}))
	})
	gw, store := newGateway(t, handler, nil)
	store.SaveErr = errors.New("disk full")

	sess, sessErr := gw.ExchangeForSession(context.Background(), provider.Credential{Provider: provider.Kakao})
	if sessErr == nil {
		t.Fatal("ExchangeForSession() error = nil, want error")
	}
	if !sess.IsGuest() {
		t.Errorf("session = %+v, want guest when persistence fails", sess)
	}
}

func TestExchangeForSession_CancelledMidExchange(t *testing.T) {
	// An exchange abandoned mid-flight must come back as a cancellation,
	// which the display layer keeps silent, never as a generic failure.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	gw, _ := newGateway(t, handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, sessErr := gw.ExchangeForSession(ctx, provider.Credential{
		Provider:    provider.Kakao,
		AccessToken: "kakao-token",
	})
	if sessErr == nil {
		t.Fatal("ExchangeForSession() error = nil, want cancellation")
	}
	if sessErr.Kind != session.KindSignInCancelled {
		t.Fatalf("Kind = %s, want %s", sessErr.Kind, session.KindSignInCancelled)
	}
	if intent := display.FromError(slog.Default(), sessErr); intent.Style != display.StyleSilent {
		t.Errorf("intent = %+v, want silent", intent)
	}
}

func TestExchangeForSession_ServerBusinessError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"code":"R0004","message":"account deactivated"}`))
	})
	gw, _ := newGateway(t, handler, nil)

	_, sessErr := gw.ExchangeForSession(context.Background(), provider.Credential{Provider: provider.Kakao})
	if sessErr == nil {
		t.Fatal("ExchangeForSession() error = nil, want error")
	}
	if sessErr.Kind != session.KindAPIError {
		t.Errorf("Kind = %s, want %s", sessErr.Kind, session.KindAPIError)
	}
	if sessErr.Code != session.CodeDeactivatedAccount {
		t.Errorf("Code = %s, want %s", sessErr.Code, session.CodeDeactivatedAccount)
	}
}

func TestCompleteSignup(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if body["nickname"] != "dotori" || body["marketingOptIn"] != true {
			t.Errorf("request body = %v", body)
		}
		_, _ = w.Write(successEnvelope(t, map[string]any{
			"accessToken":  "AT1",
			"refreshToken": "RT1",
			"isNewUser":    true,
		}))
	})
	gw, store := newGateway(t, handler, nil)

	sess, sessErr := gw.CompleteSignup(context.Background(), "TT1", "dotori", true)
	if sessErr != nil {
		t.Fatalf("CompleteSignup() error = %v", sessErr)
	}

	// The temp token is the bearer for this one call, not the stored token.
	if gotAuth != "Bearer TT1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer TT1")
	}
	if sess.IsGuest() {
		t.Errorf("session = %+v, want authenticated", sess)
	}
	if got := store.AccessToken(); got != "AT1" {
		t.Errorf("stored access token = %q, want %q", got, "AT1")
	}
}

func TestCheckNicknameAvailable(t *testing.T) {
	tests := []struct {
		name          string
		response      func(t *testing.T, w http.ResponseWriter)
		wantAvailable bool
		wantErrKind   session.ErrorKind
	}{
		{
			name: "available",
			response: func(t *testing.T, w http.ResponseWriter) {
				_, _ = w.Write(successEnvelope(t, map[string]any{"available": true}))
			},
			wantAvailable: true,
		},
		{
			name: "duplicate code is an answer not a failure",
			response: func(t *testing.T, w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"success":false,"code":"R0003","message":"duplicated"}`))
			},
			wantAvailable: false,
		},
		{
			name: "other business codes stay errors",
			response: func(t *testing.T, w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"success":false,"code":"A0001","message":"invalid token"}`))
			},
			wantErrKind: session.KindAPIError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/user/nickname/check" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("nickname"); got != "dotori" {
					t.Errorf("nickname query = %q, want %q", got, "dotori")
				}
				tt.response(t, w)
			})
			gw, _ := newGateway(t, handler, nil)

			available, sessErr := gw.CheckNicknameAvailable(context.Background(), "dotori")
			if tt.wantErrKind != "" {
				if sessErr == nil || sessErr.Kind != tt.wantErrKind {
					t.Fatalf("error = %v, want kind %s", sessErr, tt.wantErrKind)
				}
				return
			}
			if sessErr != nil {
				t.Fatalf("CheckNicknameAvailable() error = %v", sessErr)
			}
			if available != tt.wantAvailable {
				t.Errorf("available = %v, want %v", available, tt.wantAvailable)
			}
		})
	}
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	gw, store := newGateway(t, handler, nil)
	if err := store.Save("AT1", "RT1", provider.Kakao); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if sessErr := gw.Logout(context.Background()); sessErr != nil {
		t.Fatalf("Logout() error = %v, want nil despite server failure", sessErr)
	}
	if got := store.AccessToken(); got != "" {
		t.Errorf("stored access token = %q, want empty after logout", got)
	}
}

func TestLogout_SendsTokens(t *testing.T) {
	var gotBody map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/logout" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	gw, store := newGateway(t, handler, nil)
	if err := store.Save("AT1", "RT1", provider.Kakao); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if sessErr := gw.Logout(context.Background()); sessErr != nil {
		t.Fatalf("Logout() error = %v", sessErr)
	}
	if gotBody["accessToken"] != "AT1" || gotBody["refreshToken"] != "RT1" {
		t.Errorf("logout body = %v, want both tokens", gotBody)
	}
}

func TestLogout_ClearFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	gw, store := newGateway(t, handler, nil)
	store.ClearErr = errors.New("locked")

	sessErr := gw.Logout(context.Background())
	if sessErr == nil {
		t.Fatal("Logout() error = nil, want error when clear fails")
	}
	if sessErr.Kind != session.KindUnknown {
		t.Errorf("Kind = %s, want %s", sessErr.Kind, session.KindUnknown)
	}
}

func TestWithdraw(t *testing.T) {
	var gotMethod, gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	gw, store := newGateway(t, handler, nil)
	if err := store.Save("AT1", "RT1", provider.Apple); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if sessErr := gw.Withdraw(context.Background()); sessErr != nil {
		t.Fatalf("Withdraw() error = %v", sessErr)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/user" {
		t.Errorf("request = %s %s, want DELETE /api/user", gotMethod, gotPath)
	}
	if got := store.AccessToken(); got != "" {
		t.Errorf("stored access token = %q, want empty after withdrawal", got)
	}
}

func TestWithdraw_ServerFailureStillClears(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	gw, store := newGateway(t, handler, nil)
	if err := store.Save("AT1", "RT1", provider.Apple); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	sessErr := gw.Withdraw(context.Background())
	if sessErr == nil {
		t.Fatal("Withdraw() error = nil, want server error surfaced")
	}
	if got := store.AccessToken(); got != "" {
		t.Errorf("stored access token = %q, want empty even on server failure", got)
	}
}

func TestHasValidSession(t *testing.T) {
	gw, store := newGateway(t, http.NotFoundHandler(), nil)

	if gw.HasValidSession() {
		t.Error("HasValidSession() = true on empty store, want false")
	}
	if err := store.Save("AT1", "RT1", provider.Kakao); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !gw.HasValidSession() {
		t.Error("HasValidSession() = false after save, want true")
	}
}

func TestRestoredSession(t *testing.T) {
	gw, store := newGateway(t, http.NotFoundHandler(), nil)

	if _, ok := gw.RestoredSession(); ok {
		t.Error("RestoredSession() = true on empty store, want false")
	}

	if err := store.Save("AT1", "RT1", provider.Kakao); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	sess, ok := gw.RestoredSession()
	if !ok {
		t.Fatal("RestoredSession() = false after save, want true")
	}
	if sess.AccessToken != "AT1" || sess.RefreshToken != "RT1" {
		t.Errorf("session = %+v, want the persisted tokens", sess)
	}

	// Auto-login off means no restore even with tokens present.
	if err := store.SetAutoLogin(false); err != nil {
		t.Fatalf("SetAutoLogin() error = %v", err)
	}
	if _, ok := gw.RestoredSession(); ok {
		t.Error("RestoredSession() = true with auto-login disabled, want false")
	}
}

func TestTokenAuthenticator_MissingToken(t *testing.T) {
	auths := map[provider.Provider]provider.Authenticator{
		provider.Google: providersdk.NewTokenAuthenticator(provider.Google, "", "", nil),
	}
	gw, _ := newGateway(t, http.NotFoundHandler(), auths)

	_, sessErr := gw.SignInWithProvider(context.Background(), provider.Google, testAnchor{})
	if sessErr == nil {
		t.Fatal("SignInWithProvider() error = nil, want error")
	}
	if sessErr.Kind != session.KindAccountProblem {
		t.Errorf("Kind = %s, want %s", sessErr.Kind, session.KindAccountProblem)
	}
}
