// Package res holds static resources shown by the UI.
package res

// AboutContent contains the Markdown content for the About dialog.
const AboutContent = `A small media player for songs and clips, built with Go and Fyne.

**Features:**
- Import MP3, FLAC, WAV, OGG and video files into a local library
- Favorites, recently played and fuzzy search
- A play queue with "play next" and repeat-one
- Sleep timer that pauses playback
`
