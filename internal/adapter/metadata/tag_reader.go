// Package metadata reads descriptive tags from media files.
package metadata

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/reeltune/reeltune/internal/adapter/media"
	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
)

// copyrightKeys are the raw tag names that carry a copyright notice
// (ID3v2.3/2.4, ID3v2.2, Vorbis comments, MP4).
var copyrightKeys = []string{"TCOP", "TCR", "copyright", "COPYRIGHT", "cprt"}

// TagReader extracts metadata with github.com/dhowden/tag and computes the
// duration of audio files by decoding them.
type TagReader struct {
	logger *slog.Logger
}

// NewTagReader creates a new tag reader.
func NewTagReader(logger *slog.Logger) *TagReader {
	return &TagReader{
		logger: logger.With(slog.String("component", "metadata")),
	}
}

// Read returns the metadata found in the file at path.
// Missing or unreadable tags are not an error: the title falls back to the
// file name without extension.
func (r *TagReader) Read(path string) (*domain.Track, error) {
	if path == "" {
		return nil, domain.ErrInvalidLocator
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, domain.ErrFileNotFound
	}

	base := filepath.Base(path)
	track := &domain.Track{
		Title:   strings.TrimSuffix(base, filepath.Ext(base)),
		IsVideo: domain.IsVideoLocator(path),
	}

	r.readTags(path, track)

	if media.IsAudioFile(path) {
		d, err := media.Duration(path)
		if err != nil {
			r.logger.Debug("cannot compute duration", slog.String("path", path), slog.Any("error", err))
		} else {
			track.Duration = d
		}
	}

	return track, nil
}

// Supports reports whether path is an audio file or a video container.
func (r *TagReader) Supports(path string) bool {
	return media.IsImportable(path)
}

func (r *TagReader) readTags(path string, track *domain.Track) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil || m == nil {
		r.logger.Debug("no tags found", slog.String("path", path))
		return
	}

	if title := strings.TrimSpace(m.Title()); title != "" {
		track.Title = title
	}

	if artist := strings.TrimSpace(m.Artist()); artist != "" {
		track.Artist = artist
	} else if albumArtist := strings.TrimSpace(m.AlbumArtist()); albumArtist != "" {
		track.Artist = albumArtist
	}

	track.Album = strings.TrimSpace(m.Album())
	track.Copyright = copyright(m.Raw())

	if picture := m.Picture(); picture != nil {
		track.Artwork = picture.Data
	}
}

func copyright(raw map[string]interface{}) string {
	for _, key := range copyrightKeys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// Verify interface implementation
var _ ports.MetadataReader = (*TagReader)(nil)
