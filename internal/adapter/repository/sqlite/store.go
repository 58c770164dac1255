// Package sqlite provides SQLite-backed catalog repositories.
// Tracks and playlists live in one database file under the XDG data directory.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/reeltune/reeltune/internal/domain"
)

const (
	appName    = "reeltune"
	dbFileName = "catalog.db"

	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"
)

// Store is the SQLite catalog. It implements both ports.TrackRepository and
// ports.PlaylistRepository.
//
// Thread-safety: database/sql handles concurrency; the pool is limited to one
// connection so writers never contend for the SQLite lock.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// DefaultPath returns the catalog location inside the XDG data directory,
// creating parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens (or creates) the catalog database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, domain.NewRepositoryError("open", "catalog", "cannot create data directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domain.NewRepositoryError("open", "catalog", "cannot open database", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, domain.NewRepositoryError("open", "catalog", "cannot configure database", err)
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, domain.NewRepositoryError("open", "catalog", "cannot apply schema", err)
	}

	logger.Debug("catalog database opened", slog.String("path", path))

	return &Store{
		db:     db,
		logger: logger.With(slog.String("repository", "sqlite")),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx executes fn within a transaction.
// It handles Begin, Rollback on error, and Commit on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tracks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			copyright TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			locator TEXT NOT NULL,
			is_video INTEGER NOT NULL DEFAULT 0,
			is_favorite INTEGER NOT NULL DEFAULT 0,
			is_recent INTEGER NOT NULL DEFAULT 0,
			last_played_at INTEGER,
			added_at INTEGER NOT NULL,
			modified_at INTEGER NOT NULL,
			artwork BLOB
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_added_at ON tracks(added_at);
		CREATE INDEX IF NOT EXISTS idx_tracks_recent ON tracks(is_recent, last_played_at);
		CREATE INDEX IF NOT EXISTS idx_tracks_favorite ON tracks(is_favorite, modified_at);

		CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
			PRIMARY KEY (playlist_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_tracks_track ON playlist_tracks(track_id);
	`)
	return err
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func nullStringValue(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
