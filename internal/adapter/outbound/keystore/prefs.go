package keystore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// PrefStore is the sqlite-backed store for non-secret preferences, such
// as the auto-login flag. Secrets never go here.
type PrefStore struct {
	db *sql.DB
}

// OpenPrefs opens (and if needed initializes) the preference database at
// the given path. Use ":memory:" for an ephemeral store.
func OpenPrefs(path string) (*PrefStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open preference db: %w", err)
	}
	// The store is accessed from one process; a single connection keeps
	// sqlite's locking out of the picture.
	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS preferences (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init preference schema: %w", err)
	}
	return &PrefStore{db: db}, nil
}

// Close releases the underlying database handle.
func (p *PrefStore) Close() error {
	return p.db.Close()
}

// SetBool stores a boolean preference, overwriting any existing value.
func (p *PrefStore) SetBool(key string, value bool) error {
	v := "false"
	if value {
		v = "true"
	}
	_, err := p.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, v,
	)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// GetBool returns a boolean preference, or false when unset.
func (p *PrefStore) GetBool(key string) (bool, error) {
	var v string
	err := p.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get preference %q: %w", key, err)
	}
	return v == "true", nil
}

// Delete removes a preference. Deleting an unset key succeeds.
func (p *PrefStore) Delete(key string) error {
	if _, err := p.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	return nil
}
