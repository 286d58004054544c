package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AppStateStore is the local key-value storage used for small blobs that do
// not deserve their own table: the active context record, backup settings,
// directory cache markers.
type AppStateStore struct {
	db *sql.DB
}

func NewAppStateStore(db *sql.DB) *AppStateStore {
	return &AppStateStore{db: db}
}

// Get returns the stored value and whether the key was present.
func (s *AppStateStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get app state %q: %w", key, err)
	}
	return value, true, nil
}

func (s *AppStateStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set app state %q: %w", key, err)
	}
	return nil
}

func (s *AppStateStore) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("remove app state %q: %w", key, err)
	}
	return nil
}
