// Package store implements the persisted selection store: the small durable
// key-value state that survives restarts: active workspace, active
// environment and its denormalized variable snapshot, the last-used mock-log
// server and the cached user profile. All access goes through the typed
// accessors below; callers never touch raw keys.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/apiforge/forge/internal/types"
)

// EnvNone is the sentinel for "no environment selected".
const EnvNone = "none"

const (
	keyActiveWorkspaceID  = "activeWorkspaceId"
	keyActiveEnvID        = "activeEnvId"
	keyActiveEnvVars      = "activeEnvVars"
	keyCurrentLogServerID = "currentLogServerId"
	keyCurrentUser        = "currentUser"
)

// Store is the durable selection store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open selection store: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to selection store: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS selection (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize selection schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getValue(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM selection WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setValue(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO selection (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteValue(key string) error {
	if _, err := s.db.Exec(`DELETE FROM selection WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear %s: %w", key, err)
	}
	return nil
}

// ActiveWorkspaceID returns the persisted workspace id, if any.
func (s *Store) ActiveWorkspaceID() (int64, bool, error) {
	value, ok, err := s.getValue(keyActiveWorkspaceID)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// A corrupt value counts as unset; the next write repairs it.
		return 0, false, nil
	}
	return id, true, nil
}

// SetActiveWorkspaceID persists the active workspace id.
func (s *Store) SetActiveWorkspaceID(id int64) error {
	return s.setValue(keyActiveWorkspaceID, strconv.FormatInt(id, 10))
}

// ActiveEnvID returns the persisted environment id, or EnvNone when unset.
func (s *Store) ActiveEnvID() (string, error) {
	value, ok, err := s.getValue(keyActiveEnvID)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return EnvNone, nil
	}
	return value, nil
}

// SetActiveEnvID persists the active environment id (or EnvNone).
func (s *Store) SetActiveEnvID(id string) error {
	return s.setValue(keyActiveEnvID, id)
}

// ActiveEnvVars returns the denormalized variable snapshot of the active
// environment, "{}" when unset.
func (s *Store) ActiveEnvVars() (string, error) {
	value, ok, err := s.getValue(keyActiveEnvVars)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return "{}", nil
	}
	return value, nil
}

// SetActiveEnvVars persists the variable snapshot (a JSON-encoded object).
func (s *Store) SetActiveEnvVars(vars string) error {
	if vars == "" {
		vars = "{}"
	}
	return s.setValue(keyActiveEnvVars, vars)
}

// CurrentLogServerID returns the last-used mock-log server id, if any.
func (s *Store) CurrentLogServerID() (int64, bool, error) {
	value, ok, err := s.getValue(keyCurrentLogServerID)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

// SetCurrentLogServerID persists the last-used mock-log server id.
func (s *Store) SetCurrentLogServerID(id int64) error {
	return s.setValue(keyCurrentLogServerID, strconv.FormatInt(id, 10))
}

// ClearCurrentLogServerID removes the log server selection.
func (s *Store) ClearCurrentLogServerID() error {
	return s.deleteValue(keyCurrentLogServerID)
}

// CurrentUser returns the cached user profile, if any.
func (s *Store) CurrentUser() (types.User, bool, error) {
	value, ok, err := s.getValue(keyCurrentUser)
	if err != nil || !ok {
		return types.User{}, false, err
	}
	var u types.User
	if err := json.Unmarshal([]byte(value), &u); err != nil {
		return types.User{}, false, nil
	}
	return u, true, nil
}

// SetCurrentUser caches the user profile.
func (s *Store) SetCurrentUser(u types.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return s.setValue(keyCurrentUser, string(data))
}
