package keystore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/moimlabs/moim-go/internal/domain/provider"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	prefs, err := OpenPrefs(":memory:")
	if err != nil {
		t.Fatalf("OpenPrefs() error = %v", err)
	}
	t.Cleanup(func() { _ = prefs.Close() })
	return New(filepath.Join(t.TempDir(), "secrets.json"), prefs, slog.Default())
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save("AT1", "RT1", provider.Kakao); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if got := store.AccessToken(); got != "AT1" {
		t.Errorf("AccessToken() = %q, want %q", got, "AT1")
	}
	if got := store.RefreshToken(); got != "RT1" {
		t.Errorf("RefreshToken() = %q, want %q", got, "RT1")
	}
	if got := store.Provider(); got != provider.Kakao {
		t.Errorf("Provider() = %q, want %q", got, provider.Kakao)
	}
	if !store.AutoLogin() {
		t.Error("AutoLogin() = false, want true after save")
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save("AT1", "RT1", provider.Google); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if err := store.Save("AT2", "RT2", provider.Apple); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	if got := store.AccessToken(); got != "AT2" {
		t.Errorf("AccessToken() = %q, want %q", got, "AT2")
	}
	if got := store.Provider(); got != provider.Apple {
		t.Errorf("Provider() = %q, want %q", got, provider.Apple)
	}
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save("AT1", "RT1", provider.Kakao); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if got := store.AccessToken(); got != "" {
		t.Errorf("AccessToken() after clear = %q, want empty", got)
	}
	if got := store.RefreshToken(); got != "" {
		t.Errorf("RefreshToken() after clear = %q, want empty", got)
	}
	if store.AutoLogin() {
		t.Error("AutoLogin() after clear = true, want false")
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	// Clearing before any save must succeed, and so must clearing twice.
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() on empty store error = %v", err)
	}
	if err := store.Save("AT1", "RT1", provider.Kakao); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("first Clear() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
}

func TestStore_EmptyReadsAsAbsent(t *testing.T) {
	store := newTestStore(t)

	if got := store.AccessToken(); got != "" {
		t.Errorf("AccessToken() = %q, want empty", got)
	}
	if store.AutoLogin() {
		t.Error("AutoLogin() = true, want false before any save")
	}
}

func TestSecretsFile_CorruptReadsAsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secrets.json")

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "not json",
			data: []byte("garbage"),
		},
		{
			name: "checksum mismatch",
			data: mustMarshal(t, secretsPayload{
				AccessToken:  "AT1",
				RefreshToken: "RT1",
				Provider:     "KAKAO",
				Checksum:     "deadbeef",
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(path, tt.data, 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			sf := newSecretsFile(path, slog.Default())
			if got := sf.load(); got != (secretsPayload{}) {
				t.Errorf("load() = %+v, want zero payload", got)
			}
		})
	}
}

func TestSecretsFile_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")
	sf := newSecretsFile(path, slog.Default())

	if err := sf.save("AT1", "RT1", provider.Google); err != nil {
		t.Fatalf("save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		t.Errorf("secrets file mode = %04o, want no group/other access", mode)
	}
}

func TestSecretsFile_ChecksumRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")
	sf := newSecretsFile(path, slog.Default())

	if err := sf.save("AT1", "RT1", provider.Apple); err != nil {
		t.Fatalf("save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var p secretsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.Checksum != p.sum() {
		t.Errorf("stored checksum %q does not match computed %q", p.Checksum, p.sum())
	}

	got := sf.load()
	if got.AccessToken != "AT1" || got.RefreshToken != "RT1" || got.Provider != "APPLE" {
		t.Errorf("load() = %+v, want the saved payload", got)
	}
}

func TestPrefStore(t *testing.T) {
	prefs, err := OpenPrefs(":memory:")
	if err != nil {
		t.Fatalf("OpenPrefs() error = %v", err)
	}
	defer prefs.Close()

	if v, err := prefs.GetBool("missing"); err != nil || v {
		t.Errorf("GetBool(missing) = %v, %v, want false, nil", v, err)
	}
	if err := prefs.SetBool("flag", true); err != nil {
		t.Fatalf("SetBool() error = %v", err)
	}
	if v, _ := prefs.GetBool("flag"); !v {
		t.Error("GetBool(flag) = false, want true")
	}
	if err := prefs.SetBool("flag", false); err != nil {
		t.Fatalf("SetBool(false) error = %v", err)
	}
	if v, _ := prefs.GetBool("flag"); v {
		t.Error("GetBool(flag) = true after overwrite, want false")
	}
	if err := prefs.Delete("flag"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := prefs.Delete("flag"); err != nil {
		t.Fatalf("Delete() of unset key error = %v", err)
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return data
}
