// Package media decodes audio files into beep streams.
package media

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/reeltune/reeltune/internal/domain"
)

// Supported audio extensions.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtWAV  = ".wav"
	ExtOGG  = ".ogg"
)

// IsAudioFile reports whether path has an extension Decode understands.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtWAV, ExtOGG:
		return true
	default:
		return false
	}
}

// IsImportable reports whether path can be added to the catalog.
// Video containers are importable even though only audio is decoded.
func IsImportable(path string) bool {
	return IsAudioFile(path) || domain.IsVideoLocator(path)
}

// Decode opens path and returns a seekable stream and its format.
// Closing the stream closes the file.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsAudioFile(path) {
		return nil, beep.Format{}, domain.NewTransportError("decode", path, "no decoder for "+ext, domain.ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, beep.Format{}, domain.NewTransportError("decode", path, "file does not exist", domain.ErrFileNotFound)
		}
		return nil, beep.Format{}, domain.NewTransportError("decode", path, "cannot open file", err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ExtMP3:
		streamer, format, err = mp3.Decode(f)
	case ExtFLAC:
		if err = skipID3v2(f); err == nil {
			streamer, format, err = flac.Decode(f)
		}
	case ExtWAV:
		streamer, format, err = wav.Decode(f)
	case ExtOGG:
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, domain.NewTransportError("decode", path, "cannot decode audio", err)
	}

	return streamer, format, nil
}

// Duration decodes path just far enough to compute its length.
func Duration(path string) (time.Duration, error) {
	streamer, format, err := Decode(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// skipID3v2 skips an ID3v2 tag at the start of r, if present.
// Some taggers prepend one to FLAC files and the FLAC decoder rejects it.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if n < len(header) || string(header[:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// The tag size is a syncsafe integer: 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
