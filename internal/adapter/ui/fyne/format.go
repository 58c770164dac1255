package fyne

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/reeltune/reeltune/internal/domain"
)

// formatClock renders d as m:ss, or h:mm:ss from one hour up.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// subtitle joins artist and album, skipping the empty ones.
func subtitle(t domain.Track) string {
	parts := make([]string, 0, 2)
	if t.Artist != "" {
		parts = append(parts, t.Artist)
	}
	if t.Album != "" {
		parts = append(parts, t.Album)
	}
	return strings.Join(parts, " · ")
}

// libraryRow renders a catalog entry. The recent filter shows when the
// track was played, every other listing when it was added.
func libraryRow(t domain.Track, filter LibraryFilter, now time.Time) string {
	text := t.Title
	if sub := subtitle(t); sub != "" {
		text += " · " + sub
	}
	if t.Duration > 0 {
		text += " · " + formatClock(t.Duration)
	}

	switch {
	case filter == FilterRecent && !t.LastPlayedAt.IsZero():
		text += " · played " + humanize.RelTime(t.LastPlayedAt, now, "ago", "from now")
	case !t.AddedAt.IsZero():
		text += " · added " + humanize.RelTime(t.AddedAt, now, "ago", "from now")
	}

	if t.IsFavorite {
		text = "♥ " + text
	}
	return text
}

// queueRow renders a queue entry; the current one is marked.
func queueRow(t domain.Track, current bool) string {
	text := t.Title
	if t.Artist != "" {
		text += " · " + t.Artist
	}
	if current {
		return "▶ " + text
	}
	return text
}

func upNextText(t *domain.Track) string {
	if t == nil {
		return ""
	}
	return "Up next: " + t.Title
}

func sleepText(snap *domain.SleepTimerSnapshot) string {
	if snap == nil {
		return ""
	}
	if snap.Paused {
		return "Sleep " + formatClock(snap.Remaining) + " (paused)"
	}
	return "Sleep " + formatClock(snap.Remaining)
}

func importedText(n int) string {
	if n == 0 {
		return "No new tracks"
	}
	return "Added " + english.Plural(n, "track", "") + " to the library"
}
