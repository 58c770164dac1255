package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
)

// CatalogService owns the imported tracks and playlists.
// It is the only component that writes to the catalog; the playback session
// sees it through ports.TrackLookup.
type CatalogService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	tracks    ports.TrackRepository
	playlists ports.PlaylistRepository
	reader    ports.MetadataReader
	bus       ports.EventBus
	clock     clockwork.Clock

	// Configuration
	mediaDir string

	// State
	importing bool
	playedSub domain.SubscriptionID

	mu sync.Mutex
}

// NewCatalogService creates a catalog service storing imported media in
// mediaDir. It subscribes to TrackStartedEvent to keep the recently played
// list current.
func NewCatalogService(
	logger *slog.Logger,
	tracks ports.TrackRepository,
	playlists ports.PlaylistRepository,
	reader ports.MetadataReader,
	bus ports.EventBus,
	clock clockwork.Clock,
	mediaDir string,
) *CatalogService {
	s := &CatalogService{
		logger:    logger,
		tracks:    tracks,
		playlists: playlists,
		reader:    reader,
		bus:       bus,
		clock:     clock,
		mediaDir:  mediaDir,
	}

	s.playedSub = bus.Subscribe(domain.EventTrackStarted, s.handleTrackStarted)

	logger.Debug("catalog service initialized", slog.String("media_dir", mediaDir))

	return s
}

// MediaDir returns the directory imported media is copied into.
func (s *CatalogService) MediaDir() string {
	return s.mediaDir
}

// Import copies the given files into the media directory and adds them to
// the catalog. Unsupported or unreadable files are skipped. On cancellation
// the tracks imported so far are returned with domain.ErrImportCancelled.
func (s *CatalogService) Import(ctx context.Context, paths []string) ([]domain.Track, error) {
	s.mu.Lock()
	if s.importing {
		s.mu.Unlock()
		return nil, domain.ErrImportInProgress
	}
	s.importing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.importing = false
		s.mu.Unlock()
	}()

	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return nil, domain.NewServiceError("CatalogService", "Import", "cannot create media directory", err)
	}

	s.bus.Publish(domain.NewImportStartedEvent(len(paths)))

	imported := make([]domain.Track, 0, len(paths))
	for i, path := range paths {
		select {
		case <-ctx.Done():
			s.logger.Info("import cancelled", slog.Int("imported", len(imported)))
			s.bus.Publish(domain.NewImportCompletedEvent(imported))
			return imported, domain.ErrImportCancelled
		default:
		}

		if !s.reader.Supports(path) {
			s.logger.Debug("skipping unsupported file", slog.String("path", path))
		} else if track, err := s.importFile(ctx, path); err != nil {
			s.logger.Warn("cannot import file", slog.String("path", path), slog.Any("error", err))
		} else {
			imported = append(imported, track)
		}

		s.bus.Publish(domain.NewImportProgressEvent(domain.ImportProgress{
			CurrentFile: path,
			FilesDone:   i + 1,
			TotalFiles:  len(paths),
			Imported:    len(imported),
		}))
	}

	s.logger.Info("import finished", slog.Int("files", len(paths)), slog.Int("imported", len(imported)))
	s.bus.Publish(domain.NewImportCompletedEvent(imported))

	return imported, nil
}

func (s *CatalogService) importFile(ctx context.Context, path string) (domain.Track, error) {
	meta, err := s.reader.Read(path)
	if err != nil {
		return domain.Track{}, err
	}

	id := uuid.NewString()
	locator := id + strings.ToLower(filepath.Ext(path))
	dest := filepath.Join(s.mediaDir, locator)

	if err := copyFile(path, dest); err != nil {
		return domain.Track{}, err
	}

	now := s.clock.Now()
	track := *meta
	track.ID = id
	track.Locator = locator
	track.IsVideo = domain.IsVideoLocator(path)
	track.AddedAt = now
	track.ModifiedAt = now

	if err := s.tracks.SaveTrack(ctx, track); err != nil {
		_ = os.Remove(dest)
		return domain.Track{}, err
	}

	return track, nil
}

// copyFile copies src to dst, removing dst on failure.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy media: %w", err)
	}
	return nil
}

// Track returns the track with the given ID.
func (s *CatalogService) Track(ctx context.Context, id string) (*domain.Track, error) {
	return s.tracks.GetTrack(ctx, id)
}

// LookupTrack resolves a track ID for the playback session.
func (s *CatalogService) LookupTrack(id string) (domain.Track, bool) {
	track, err := s.tracks.GetTrack(context.Background(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrTrackNotFound) {
			s.logger.Warn("track lookup failed", slog.String("track_id", id), slog.Any("error", err))
		}
		return domain.Track{}, false
	}
	return *track, true
}

// All returns every track, most recently added first.
func (s *CatalogService) All(ctx context.Context) ([]domain.Track, error) {
	return s.tracks.ListTracks(ctx)
}

// Favorites returns liked tracks, most recently modified first.
func (s *CatalogService) Favorites(ctx context.Context) ([]domain.Track, error) {
	return s.tracks.ListFavorites(ctx)
}

// RecentlyPlayed returns up to limit recently played tracks, newest first.
func (s *CatalogService) RecentlyPlayed(ctx context.Context, limit int) ([]domain.Track, error) {
	return s.tracks.ListRecent(ctx, limit)
}

// ToggleFavorite flips the favorite flag of a track and returns the new value.
func (s *CatalogService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	track, err := s.tracks.GetTrack(ctx, id)
	if err != nil {
		return false, err
	}

	favorite := !track.IsFavorite
	if err := s.tracks.SetFavorite(ctx, id, favorite, s.clock.Now()); err != nil {
		return track.IsFavorite, err
	}

	s.bus.Publish(domain.NewFavoriteToggledEvent(id, favorite))
	return favorite, nil
}

// Delete removes a track's media file and then its catalog record.
// A media file that is already gone is not an error.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	track, err := s.tracks.GetTrack(ctx, id)
	if err != nil {
		return err
	}

	path := filepath.Join(s.mediaDir, track.Locator)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return domain.NewServiceError("CatalogService", "Delete", "cannot remove media file", err)
	}

	if err := s.tracks.DeleteTrack(ctx, id); err != nil {
		return err
	}

	s.logger.Info("track deleted", slog.String("track_id", id), slog.String("title", track.Title))
	s.bus.Publish(domain.NewTrackDeletedEvent(id))
	return nil
}

// Search returns tracks matching query. Substring matches on title, artist or
// album come first in catalog order, followed by near misses ranked by edit
// distance. A limit of zero or less returns every match.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	all, err := s.tracks.ListTracks(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		track    domain.Track
		distance int
	}

	var exact []domain.Track
	var fuzzy []scored
	threshold := max(1, len([]rune(q))/3)

	for _, t := range all {
		title := strings.ToLower(t.Title)
		artist := strings.ToLower(t.Artist)

		if strings.Contains(title, q) || strings.Contains(artist, q) ||
			strings.Contains(strings.ToLower(t.Album), q) {
			exact = append(exact, t)
			continue
		}

		d := levenshtein.ComputeDistance(q, title)
		if artist != "" {
			d = min(d, levenshtein.ComputeDistance(q, artist))
		}
		if d <= threshold {
			fuzzy = append(fuzzy, scored{track: t, distance: d})
		}
	}

	slices.SortStableFunc(fuzzy, func(a, b scored) int {
		return cmp.Compare(a.distance, b.distance)
	})

	results := exact
	for _, f := range fuzzy {
		results = append(results, f.track)
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CreatePlaylist creates an empty playlist.
func (s *CatalogService) CreatePlaylist(ctx context.Context, name string) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}

	now := s.clock.Now()
	playlist := domain.Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		TrackIDs:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.playlists.SavePlaylist(ctx, playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// Playlists returns all playlists, most recently updated first.
func (s *CatalogService) Playlists(ctx context.Context) ([]domain.Playlist, error) {
	return s.playlists.ListPlaylists(ctx)
}

// AddToPlaylist appends a track to a playlist. Adding a track that is
// already in the playlist is a no-op.
func (s *CatalogService) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	if _, err := s.tracks.GetTrack(ctx, trackID); err != nil {
		return err
	}

	playlist, err := s.playlists.GetPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	if slices.Contains(playlist.TrackIDs, trackID) {
		return nil
	}

	playlist.TrackIDs = append(playlist.TrackIDs, trackID)
	playlist.UpdatedAt = s.clock.Now()
	return s.playlists.SavePlaylist(ctx, *playlist)
}

// RemoveFromPlaylist removes a track from a playlist.
func (s *CatalogService) RemoveFromPlaylist(ctx context.Context, playlistID, trackID string) error {
	playlist, err := s.playlists.GetPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	idx := slices.Index(playlist.TrackIDs, trackID)
	if idx < 0 {
		return domain.ErrTrackNotFound
	}

	playlist.TrackIDs = slices.Delete(playlist.TrackIDs, idx, idx+1)
	playlist.UpdatedAt = s.clock.Now()
	return s.playlists.SavePlaylist(ctx, *playlist)
}

// PlaylistTracks resolves a playlist to its tracks in order.
func (s *CatalogService) PlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	playlist, err := s.playlists.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(playlist.TrackIDs))
	for _, id := range playlist.TrackIDs {
		track, err := s.tracks.GetTrack(ctx, id)
		if errors.Is(err, domain.ErrTrackNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *track)
	}
	return tracks, nil
}

// DeletePlaylist removes a playlist. The tracks stay in the catalog.
func (s *CatalogService) DeletePlaylist(ctx context.Context, playlistID string) error {
	return s.playlists.DeletePlaylist(ctx, playlistID)
}

// handleTrackStarted marks the started track as recently played.
func (s *CatalogService) handleTrackStarted(event domain.Event) {
	e, ok := event.(domain.TrackStartedEvent)
	if !ok {
		return
	}

	if err := s.tracks.MarkPlayed(context.Background(), e.Track.ID, s.clock.Now()); err != nil {
		s.logger.Warn("cannot mark track played", slog.String("track_id", e.Track.ID), slog.Any("error", err))
	}
}

// Shutdown stops listening to playback events.
func (s *CatalogService) Shutdown() {
	s.bus.Unsubscribe(s.playedSub)
}

// Verify that CatalogService implements the TrackLookup interface
var _ ports.TrackLookup = (*CatalogService)(nil)
