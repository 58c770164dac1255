package sqlite

import (
	"context"
	"database/sql"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
)

// SavePlaylist inserts or replaces a playlist and rewrites its track order.
func (s *Store) SavePlaylist(ctx context.Context, playlist domain.Playlist) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO playlists (id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				updated_at = excluded.updated_at
		`, playlist.ID, playlist.Name, toUnix(playlist.CreatedAt), toUnix(playlist.UpdatedAt))
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ?`, playlist.ID); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO playlist_tracks (playlist_id, position, track_id)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, trackID := range playlist.TrackIDs {
			if _, err := stmt.ExecContext(ctx, playlist.ID, i, trackID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewRepositoryError("save", "playlists", "cannot save playlist "+playlist.ID, err)
	}
	return nil
}

// GetPlaylist returns a playlist by ID.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error) {
	var p domain.Playlist
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM playlists WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &createdAt, &updatedAt)
	if isNoRows(err) {
		return nil, domain.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, domain.NewRepositoryError("get", "playlists", "cannot read playlist "+id, err)
	}

	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)

	p.TrackIDs, err = s.playlistTrackIDs(ctx, id)
	if err != nil {
		return nil, domain.NewRepositoryError("get", "playlists", "cannot read playlist tracks", err)
	}
	return &p, nil
}

// ListPlaylists returns all playlists, most recently updated first.
func (s *Store) ListPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM playlists ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, domain.NewRepositoryError("list", "playlists", "query failed", err)
	}

	var playlists []domain.Playlist
	for rows.Next() {
		var p domain.Playlist
		var createdAt, updatedAt int64
		if err := rows.Scan(&p.ID, &p.Name, &createdAt, &updatedAt); err != nil {
			rows.Close()
			return nil, domain.NewRepositoryError("list", "playlists", "cannot scan playlist", err)
		}
		p.CreatedAt = fromUnix(createdAt)
		p.UpdatedAt = fromUnix(updatedAt)
		playlists = append(playlists, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError("list", "playlists", "query failed", err)
	}

	// The pool has a single connection, so track IDs are read after the
	// playlist cursor is closed.
	for i := range playlists {
		ids, err := s.playlistTrackIDs(ctx, playlists[i].ID)
		if err != nil {
			return nil, domain.NewRepositoryError("list", "playlists", "cannot read playlist tracks", err)
		}
		playlists[i].TrackIDs = ids
	}
	return playlists, nil
}

// DeletePlaylist removes a playlist. Unknown IDs are a no-op.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return domain.NewRepositoryError("delete", "playlists", "cannot delete playlist "+id, err)
	}
	return nil
}

func (s *Store) playlistTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Verify that Store implements the PlaylistRepository interface
var _ ports.PlaylistRepository = (*Store)(nil)
