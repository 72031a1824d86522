package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// In-memory sqlite is per-connection; keep the pool to one.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestSessionRepository(t *testing.T) {
	t.Run("Load on an empty table returns no token", func(t *testing.T) {
		repo := NewSessionRepository(testDB(t))

		token, err := repo.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "" {
			t.Errorf("expected empty token, got %q", token)
		}
	})

	t.Run("Save and Load round trip", func(t *testing.T) {
		repo := NewSessionRepository(testDB(t))

		if err := repo.Save("tok-abc"); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		token, err := repo.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if token != "tok-abc" {
			t.Errorf("expected tok-abc, got %q", token)
		}
	})

	t.Run("Save replaces the previous token", func(t *testing.T) {
		repo := NewSessionRepository(testDB(t))

		repo.Save("first")
		if err := repo.Save("second"); err != nil {
			t.Fatalf("second save failed: %v", err)
		}

		token, _ := repo.Load()
		if token != "second" {
			t.Errorf("expected the replacement token, got %q", token)
		}
	})

	t.Run("Clear removes the token", func(t *testing.T) {
		repo := NewSessionRepository(testDB(t))

		repo.Save("tok-abc")
		if err := repo.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		token, err := repo.Load()
		if err != nil {
			t.Fatalf("load after clear failed: %v", err)
		}
		if token != "" {
			t.Errorf("expected cleared token, got %q", token)
		}
	})

	t.Run("Clear on an empty table is fine", func(t *testing.T) {
		repo := NewSessionRepository(testDB(t))
		if err := repo.Clear(); err != nil {
			t.Errorf("expected idempotent clear, got %v", err)
		}
	})
}

func TestPublicationCacheRepository(t *testing.T) {
	year := 2023
	samplePubs := []models.Publication{
		{ID: 1, Title: "A Study", Year: &year, UploadDate: time.Now().UTC()},
		{ID: 2, Title: "Another Study", UploadDate: time.Now().UTC()},
	}

	t.Run("Get without a snapshot reports not found", func(t *testing.T) {
		repo := NewPublicationCacheRepository(testDB(t))

		_, _, err := repo.Get(ScopeAll, models.Query{})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Put and Get round trip", func(t *testing.T) {
		repo := NewPublicationCacheRepository(testDB(t))
		q := models.Query{Search: "study", OrderBy: models.OrderDateDesc}

		if err := repo.Put(ScopeAll, q, samplePubs); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		pubs, cachedAt, err := repo.Get(ScopeAll, q)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if len(pubs) != 2 || pubs[0].Title != "A Study" {
			t.Errorf("unexpected snapshot %v", pubs)
		}
		if pubs[0].Year == nil || *pubs[0].Year != 2023 {
			t.Errorf("expected year to survive the round trip, got %v", pubs[0].Year)
		}
		if cachedAt.IsZero() {
			t.Error("expected a cache timestamp")
		}
	})

	t.Run("Put replaces the snapshot for the same key", func(t *testing.T) {
		repo := NewPublicationCacheRepository(testDB(t))
		q := models.Query{OrderBy: models.OrderDateDesc}

		repo.Put(ScopeAll, q, samplePubs)
		if err := repo.Put(ScopeAll, q, samplePubs[:1]); err != nil {
			t.Fatalf("replacement put failed: %v", err)
		}

		pubs, _, err := repo.Get(ScopeAll, q)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if len(pubs) != 1 {
			t.Errorf("expected replaced snapshot with 1 publication, got %d", len(pubs))
		}
	})

	t.Run("scopes are independent", func(t *testing.T) {
		repo := NewPublicationCacheRepository(testDB(t))
		q := models.Query{OrderBy: models.OrderDateDesc}

		repo.Put(ScopeAll, q, samplePubs)
		repo.Put(ScopeMine, q, samplePubs[:1])

		allPubs, _, _ := repo.Get(ScopeAll, q)
		minePubs, _, _ := repo.Get(ScopeMine, q)
		if len(allPubs) != 2 || len(minePubs) != 1 {
			t.Errorf("expected independent scopes, got all=%d mine=%d", len(allPubs), len(minePubs))
		}
	})

	t.Run("queries are normalized before lookup", func(t *testing.T) {
		repo := NewPublicationCacheRepository(testDB(t))

		repo.Put(ScopeAll, models.Query{Search: "study"}, samplePubs)

		pubs, _, err := repo.Get(ScopeAll, models.Query{Search: "  study  ", OrderBy: models.OrderDateDesc})
		if err != nil {
			t.Fatalf("expected normalized hit, got %v", err)
		}
		if len(pubs) != 2 {
			t.Errorf("unexpected snapshot size %d", len(pubs))
		}
	})

	t.Run("List returns entries with counts", func(t *testing.T) {
		repo := NewPublicationCacheRepository(testDB(t))

		repo.Put(ScopeAll, models.Query{OrderBy: models.OrderDateDesc}, samplePubs)
		repo.Put(ScopeMine, models.Query{OrderBy: models.OrderTitleAsc}, samplePubs[:1])

		entries, err := repo.List()
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for _, entry := range entries {
			if entry.Count == 0 {
				t.Errorf("expected non-zero count in %+v", entry)
			}
		}
	})

	t.Run("Clear removes everything", func(t *testing.T) {
		repo := NewPublicationCacheRepository(testDB(t))

		repo.Put(ScopeAll, models.Query{}, samplePubs)
		if err := repo.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		entries, _ := repo.List()
		if len(entries) != 0 {
			t.Errorf("expected empty cache, got %d entries", len(entries))
		}
	})
}
