// Package keystore persists session credentials between runs: secrets in
// a locked-down file, non-secret preferences in sqlite.
package keystore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/moimlabs/moim-go/internal/domain/provider"
)

// secretsPayload is the on-disk shape of the secure credential file.
// Checksum covers the three secret fields and rejects torn or corrupted
// files on load.
type secretsPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Provider     string `json:"provider"`
	Checksum     string `json:"checksum"`
}

// sum computes the payload checksum over the secret fields.
func (p secretsPayload) sum() string {
	h := xxhash.New()
	_, _ = h.WriteString(p.AccessToken)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(p.RefreshToken)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(p.Provider)
	return strconv.FormatUint(h.Sum64(), 16)
}

// secretsFile stores credentials in a 0600 JSON file with atomic writes
// (write-tmp-then-rename), flock for cross-process exclusion, and a
// mutex for in-process exclusion.
//
// Reads are best-effort: any failure (missing file, bad permissions,
// corrupt JSON, checksum mismatch) is reported as "absent" rather than
// an error. Writes surface their errors.
type secretsFile struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func newSecretsFile(path string, logger *slog.Logger) *secretsFile {
	return &secretsFile{path: path, logger: logger}
}

// load reads the credential file. Missing or unreadable files return the
// zero payload. Warns if the file permissions are more open than 0600.
func (s *secretsFile) load() secretsPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *secretsFile) loadLocked() secretsPayload {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("secrets file unreadable, treating as absent", "path", s.path, "error", err)
		}
		return secretsPayload{}
	}

	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 { // group or other has access
				s.logger.Warn("secrets file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var p secretsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("secrets file corrupt, treating as absent", "path", s.path, "error", err)
		return secretsPayload{}
	}
	if p.Checksum != p.sum() {
		s.logger.Warn("secrets file checksum mismatch, treating as absent", "path", s.path)
		return secretsPayload{}
	}
	return p
}

// save replaces the credential file wholesale. The existing file is
// removed first (delete-then-insert, atomic upsert cannot be assumed of
// the backing store), then the new payload is written atomically.
func (s *secretsFile) save(accessToken, refreshToken string, p provider.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.flock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing secrets file: %w", err)
	}

	payload := secretsPayload{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Provider:     string(p),
	}
	payload.Checksum = payload.sum()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	// Safety net: the rename preserves the temp file's 0600 mode, but
	// make it explicit.
	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on secrets file", "error", err)
	}

	s.logger.Debug("secrets saved", "path", s.path)
	return nil
}

// clear removes the credential file. Removing an already-absent file
// succeeds, so clear is idempotent.
func (s *secretsFile) clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.flock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove secrets file: %w", err)
	}
	return nil
}

// flock acquires the cross-process lock and returns its release func.
func (s *secretsFile) flock() (func(), error) {
	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := flockLock(lockFile.Fd()); err != nil {
		_ = lockFile.Close()
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
	return func() {
		_ = flockUnlock(lockFile.Fd())
		_ = lockFile.Close()
	}, nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it over
// the target path. On any error the temp file is cleaned up.
func (s *secretsFile) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to secrets: %w", err)
	}
	return nil
}
