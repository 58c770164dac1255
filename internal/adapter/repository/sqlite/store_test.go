package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/logger"
)

// setupTestStore creates an in-memory catalog with the schema initialized.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(MemoryPath, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func sampleTrack(id string, addedAt time.Time) domain.Track {
	return domain.Track{
		ID:         id,
		Title:      "Title " + id,
		Artist:     "Artist " + id,
		Album:      "Album",
		Duration:   3*time.Minute + 15*time.Second,
		Locator:    id + ".mp3",
		AddedAt:    addedAt,
		ModifiedAt: addedAt,
		Artwork:    []byte{0x89, 0x50, 0x4e, 0x47},
	}
}

func TestStore_SaveAndGetTrack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	track := sampleTrack("t1", now)
	track.Copyright = "(c) 2024"
	track.IsVideo = true
	require.NoError(t, store.SaveTrack(ctx, track))

	got, err := store.GetTrack(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, track.Title, got.Title)
	assert.Equal(t, track.Artist, got.Artist)
	assert.Equal(t, track.Copyright, got.Copyright)
	assert.Equal(t, track.Duration, got.Duration)
	assert.Equal(t, track.Locator, got.Locator)
	assert.Equal(t, track.Artwork, got.Artwork)
	assert.True(t, got.IsVideo)
	assert.False(t, got.IsFavorite)
	assert.True(t, got.AddedAt.Equal(now))
	assert.True(t, got.LastPlayedAt.IsZero())
}

func TestStore_GetTrackNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetTrack(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTrackNotFound)
}

func TestStore_SaveTrackUpserts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	track := sampleTrack("t1", time.Now())
	require.NoError(t, store.SaveTrack(ctx, track))

	track.Title = "Renamed"
	require.NoError(t, store.SaveTrack(ctx, track))

	all, err := store.ListTracks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Renamed", all[0].Title)
}

func TestStore_ListTracksNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.SaveTrack(ctx, sampleTrack("old", base.Add(-time.Hour))))
	require.NoError(t, store.SaveTrack(ctx, sampleTrack("new", base)))

	all, err := store.ListTracks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "old", all[1].ID)
}

func TestStore_Favorites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveTrack(ctx, sampleTrack(id, base)))
	}

	require.NoError(t, store.SetFavorite(ctx, "a", true, base.Add(time.Minute)))
	require.NoError(t, store.SetFavorite(ctx, "c", true, base.Add(2*time.Minute)))

	favs, err := store.ListFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "c", favs[0].ID)
	assert.Equal(t, "a", favs[1].ID)

	require.NoError(t, store.SetFavorite(ctx, "c", false, base.Add(3*time.Minute)))
	favs, err = store.ListFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)

	assert.ErrorIs(t, store.SetFavorite(ctx, "zzz", true, base), domain.ErrTrackNotFound)
}

func TestStore_RecentlyPlayed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveTrack(ctx, sampleTrack(id, base)))
	}

	require.NoError(t, store.MarkPlayed(ctx, "b", base.Add(time.Minute)))
	require.NoError(t, store.MarkPlayed(ctx, "a", base.Add(2*time.Minute)))
	require.NoError(t, store.MarkPlayed(ctx, "c", base.Add(3*time.Minute)))

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "a", recent[1].ID)
	assert.True(t, recent[0].IsRecent)
	assert.True(t, recent[0].LastPlayedAt.Equal(base.Add(3*time.Minute)))

	none, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.ErrorIs(t, store.MarkPlayed(ctx, "zzz", base), domain.ErrTrackNotFound)
}

func TestStore_DeleteTrackCascadesToPlaylists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SaveTrack(ctx, sampleTrack("a", now)))
	require.NoError(t, store.SaveTrack(ctx, sampleTrack("b", now)))
	require.NoError(t, store.SavePlaylist(ctx, domain.Playlist{
		ID: "p1", Name: "Mix", TrackIDs: []string{"a", "b"}, CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, store.DeleteTrack(ctx, "a"))
	assert.ErrorIs(t, store.DeleteTrack(ctx, "a"), domain.ErrTrackNotFound)

	p, err := store.GetPlaylist(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, p.TrackIDs)
}

func TestStore_Playlists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveTrack(ctx, sampleTrack(id, now)))
	}

	require.NoError(t, store.SavePlaylist(ctx, domain.Playlist{
		ID: "p1", Name: "Morning", TrackIDs: []string{"c", "a"}, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SavePlaylist(ctx, domain.Playlist{
		ID: "p2", Name: "Evening", CreatedAt: now, UpdatedAt: now.Add(time.Minute),
	}))

	p, err := store.GetPlaylist(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Morning", p.Name)
	assert.Equal(t, []string{"c", "a"}, p.TrackIDs)

	// Rewriting the order replaces the old one.
	p.TrackIDs = []string{"a", "b", "c"}
	p.UpdatedAt = now.Add(2 * time.Minute)
	require.NoError(t, store.SavePlaylist(ctx, *p))

	all, err := store.ListPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].ID)
	assert.Equal(t, []string{"a", "b", "c"}, all[0].TrackIDs)
	assert.Empty(t, all[1].TrackIDs)

	require.NoError(t, store.DeletePlaylist(ctx, "p1"))
	require.NoError(t, store.DeletePlaylist(ctx, "p1"))
	_, err = store.GetPlaylist(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrPlaylistNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	ctx := context.Background()

	store, err := Open(path, logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, store.SaveTrack(ctx, sampleTrack("a", time.Now())))
	require.NoError(t, store.Close())

	store, err = Open(path, logger.NewTestLogger())
	require.NoError(t, err)
	defer store.Close()

	track, err := store.GetTrack(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Title a", track.Title)
}
