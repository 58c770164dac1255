package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
)

const trackColumns = `id, title, artist, album, copyright, duration_ms, locator,
	is_video, is_favorite, is_recent, last_played_at, added_at, modified_at, artwork`

// SaveTrack inserts or replaces a track.
func (s *Store) SaveTrack(ctx context.Context, track domain.Track) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (`+trackColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			copyright = excluded.copyright,
			duration_ms = excluded.duration_ms,
			locator = excluded.locator,
			is_video = excluded.is_video,
			is_favorite = excluded.is_favorite,
			is_recent = excluded.is_recent,
			last_played_at = excluded.last_played_at,
			modified_at = excluded.modified_at,
			artwork = excluded.artwork
	`,
		track.ID, track.Title, track.Artist, track.Album, track.Copyright,
		track.Duration.Milliseconds(), track.Locator,
		track.IsVideo, track.IsFavorite, track.IsRecent,
		nullTime(track.LastPlayedAt), toUnix(track.AddedAt), toUnix(track.ModifiedAt),
		track.Artwork,
	)
	if err != nil {
		return domain.NewRepositoryError("save", "tracks", "cannot save track "+track.ID, err)
	}
	return nil
}

// GetTrack returns the track with the given ID.
func (s *Store) GetTrack(ctx context.Context, id string) (*domain.Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)

	track, err := scanTrack(row)
	if isNoRows(err) {
		return nil, domain.ErrTrackNotFound
	}
	if err != nil {
		return nil, domain.NewRepositoryError("get", "tracks", "cannot read track "+id, err)
	}
	return &track, nil
}

// ListTracks returns every track, most recently added first.
func (s *Store) ListTracks(ctx context.Context) ([]domain.Track, error) {
	return s.queryTracks(ctx, "list", `SELECT `+trackColumns+` FROM tracks ORDER BY added_at DESC, id`)
}

// ListFavorites returns liked tracks, most recently modified first.
func (s *Store) ListFavorites(ctx context.Context) ([]domain.Track, error) {
	return s.queryTracks(ctx, "favorites", `
		SELECT `+trackColumns+` FROM tracks
		WHERE is_favorite = 1
		ORDER BY modified_at DESC, id`)
}

// ListRecent returns up to limit recently played tracks, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]domain.Track, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.queryTracks(ctx, "recent", `
		SELECT `+trackColumns+` FROM tracks
		WHERE is_recent = 1
		ORDER BY last_played_at DESC, id
		LIMIT ?`, limit)
}

// SetFavorite sets the favorite flag and bumps the modification time.
func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tracks SET is_favorite = ?, modified_at = ? WHERE id = ?`,
		favorite, toUnix(at), id)
	return s.checkUpdated(res, err, "favorite", id)
}

// MarkPlayed flags the track as recently played.
func (s *Store) MarkPlayed(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tracks SET is_recent = 1, last_played_at = ? WHERE id = ?`,
		toUnix(at), id)
	return s.checkUpdated(res, err, "played", id)
}

// DeleteTrack removes the track. Playlist memberships go with it.
func (s *Store) DeleteTrack(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err := s.checkUpdated(res, err, "delete", id); err != nil {
		return err
	}

	s.logger.Debug("track deleted", slog.String("track_id", id))
	return nil
}

func (s *Store) checkUpdated(res sql.Result, err error, op, id string) error {
	if err != nil {
		return domain.NewRepositoryError(op, "tracks", "cannot update track "+id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewRepositoryError(op, "tracks", "cannot update track "+id, err)
	}
	if n == 0 {
		return domain.ErrTrackNotFound
	}
	return nil
}

func (s *Store) queryTracks(ctx context.Context, op, query string, args ...any) ([]domain.Track, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewRepositoryError(op, "tracks", "query failed", err)
	}
	defer rows.Close()

	var tracks []domain.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, domain.NewRepositoryError(op, "tracks", "cannot scan track", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError(op, "tracks", "query failed", err)
	}
	return tracks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (domain.Track, error) {
	var t domain.Track
	var artist, album, copyright sql.NullString
	var durationMs, addedAt, modifiedAt int64
	var lastPlayed sql.NullInt64

	err := row.Scan(&t.ID, &t.Title, &artist, &album, &copyright, &durationMs, &t.Locator,
		&t.IsVideo, &t.IsFavorite, &t.IsRecent, &lastPlayed, &addedAt, &modifiedAt, &t.Artwork)
	if err != nil {
		return domain.Track{}, err
	}

	t.Artist = nullStringValue(artist)
	t.Album = nullStringValue(album)
	t.Copyright = nullStringValue(copyright)
	t.Duration = time.Duration(durationMs) * time.Millisecond
	t.AddedAt = fromUnix(addedAt)
	t.ModifiedAt = fromUnix(modifiedAt)
	if lastPlayed.Valid {
		t.LastPlayedAt = fromUnix(lastPlayed.Int64)
	}
	return t, nil
}

// Verify that Store implements the track ports
var (
	_ ports.TrackRepository = (*Store)(nil)
)
