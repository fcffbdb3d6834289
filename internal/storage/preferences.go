// Package storage remembers the editor buffer, language and theme across
// sessions. The store is a best-effort cache: missing or unreadable values
// fall back to the caller's defaults.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	// Pure-Go SQLite driver, registers "sqlite".
	_ "modernc.org/sqlite"
)

// Preference keys.
const (
	KeyCode       = "code"
	KeyLanguage   = "language"
	KeyThemeMode  = "theme_mode"
	KeyThemeColor = "theme_color"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Preferences is everything remembered between sessions.
type Preferences struct {
	Code       string
	Language   string
	ThemeMode  string
	ThemeColor string
}

func (p Preferences) pairs() map[string]string {
	return map[string]string{
		KeyCode:       p.Code,
		KeyLanguage:   p.Language,
		KeyThemeMode:  p.ThemeMode,
		KeyThemeColor: p.ThemeColor,
	}
}

// PreferenceStore is a SQLite-backed key/value table.
type PreferenceStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// OpenPreferenceStore opens or creates the database at path. Use ":memory:"
// for a throwaway store.
func OpenPreferenceStore(path string, logger *zap.Logger) (*PreferenceStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("storage")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A second pooled connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Debug("preference store ready", zap.String("path", path))
	return &PreferenceStore{db: db, logger: logger}, nil
}

func (s *PreferenceStore) Close() error {
	return s.db.Close()
}

// Get returns the stored value for key; ok is false when nothing is stored.
func (s *PreferenceStore) Get(key string) (value string, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PreferenceStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *PreferenceStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Load fills every field that has a stored value and keeps the default for
// the rest. Read errors are logged, never returned.
func (s *PreferenceStore) Load(defaults Preferences) Preferences {
	out := defaults
	fields := map[string]*string{
		KeyCode:       &out.Code,
		KeyLanguage:   &out.Language,
		KeyThemeMode:  &out.ThemeMode,
		KeyThemeColor: &out.ThemeColor,
	}
	for key, dst := range fields {
		value, ok, err := s.Get(key)
		if err != nil {
			s.logger.Warn("preference unreadable, using default", zap.String("key", key), zap.Error(err))
			continue
		}
		if ok {
			*dst = value
		}
	}
	return out
}

// Save writes all preferences in one transaction. The code buffer is always
// written since an empty editor is a real value; empty language and theme
// fields are skipped so they never erase stored values.
func (s *PreferenceStore) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for key, value := range p.pairs() {
		if value == "" && key != KeyCode {
			continue
		}
		_, err := tx.Exec(`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now)
		if err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
