package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// SessionRepository persists the bearer token in a single-row table.
// Implements session.TokenStore: an absent row means "logged out".
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the token.
func (r *SessionRepository) Save(token string) error {
	query := `
		INSERT INTO session (id, token, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, token, time.Now()); err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}
	return nil
}

// Load returns the persisted token, or "" when none is stored.
func (r *SessionRepository) Load() (string, error) {
	var token string
	err := r.db.QueryRow("SELECT token FROM session WHERE id = 1").Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session token: %w", err)
	}
	return token, nil
}

// Clear removes the persisted token. Clearing an empty store is not an error.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}
