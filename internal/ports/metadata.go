package ports

import (
	"github.com/reeltune/reeltune/internal/domain"
)

// MetadataReader extracts display metadata from a media file.
// Only descriptive fields of the returned track are populated; identity,
// locator and catalog flags are assigned by the caller.
type MetadataReader interface {
	// Read returns the metadata found in the file at path.
	// Files without tags yield a track titled after the file name.
	Read(path string) (*domain.Track, error)

	// Supports reports whether files like path can be imported.
	Supports(path string) bool
}
