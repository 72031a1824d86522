package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/shared"
)

// Scope names which list a snapshot belongs to.
type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeMine Scope = "mine"
)

// CacheEntry describes one stored snapshot.
type CacheEntry struct {
	Scope    Scope
	Query    models.Query
	Count    int
	CachedAt time.Time
}

// PublicationCacheRepository stores JSON snapshots of fetched publication
// lists, keyed by scope and query, for offline inspection. It is a
// convenience mirror, never a substitute for refetching: mutations always go
// back to the server.
type PublicationCacheRepository struct {
	db *sql.DB
}

// NewPublicationCacheRepository creates a new [PublicationCacheRepository] with the given database connection
func NewPublicationCacheRepository(db *sql.DB) *PublicationCacheRepository {
	return &PublicationCacheRepository{db: db}
}

// Put stores or replaces the snapshot for (scope, query).
func (r *PublicationCacheRepository) Put(scope Scope, q models.Query, pubs []models.Publication) error {
	q = q.Normalized()

	payload, err := json.Marshal(pubs)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	query := `
		INSERT INTO publication_cache (id, scope, search, order_by, payload, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (scope, search, order_by) DO UPDATE
		SET payload = excluded.payload, cached_at = excluded.cached_at
	`

	_, err = r.db.Exec(query, shared.GenerateID(), string(scope), q.Search, string(q.OrderBy), string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot for (scope, query) and when it was cached.
func (r *PublicationCacheRepository) Get(scope Scope, q models.Query) ([]models.Publication, time.Time, error) {
	q = q.Normalized()

	var (
		payload  string
		cachedAt time.Time
	)

	query := "SELECT payload, cached_at FROM publication_cache WHERE scope = ? AND search = ? AND order_by = ?"
	err := r.db.QueryRow(query, string(scope), q.Search, string(q.OrderBy)).Scan(&payload, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, fmt.Errorf("no cached snapshot: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query snapshot: %w", err)
	}

	var pubs []models.Publication
	if err := json.Unmarshal([]byte(payload), &pubs); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return pubs, cachedAt, nil
}

// List returns all stored snapshots, newest first.
func (r *PublicationCacheRepository) List() ([]CacheEntry, error) {
	query := "SELECT scope, search, order_by, payload, cached_at FROM publication_cache ORDER BY cached_at DESC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var (
			scope    string
			search   string
			orderBy  string
			payload  string
			cachedAt time.Time
		)
		if err := rows.Scan(&scope, &search, &orderBy, &payload, &cachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		var pubs []models.Publication
		if err := json.Unmarshal([]byte(payload), &pubs); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}

		entries = append(entries, CacheEntry{
			Scope:    Scope(scope),
			Query:    models.Query{Search: search, OrderBy: models.OrderBy(orderBy)},
			Count:    len(pubs),
			CachedAt: cachedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Clear removes all stored snapshots.
func (r *PublicationCacheRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM publication_cache"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}
