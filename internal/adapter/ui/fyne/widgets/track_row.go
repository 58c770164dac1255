// Package widgets provides custom Fyne widgets for ReelTune.
package widgets

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

var (
	_ fyneapp.DoubleTappable    = (*TrackRow)(nil)
	_ fyneapp.SecondaryTappable = (*TrackRow)(nil)
)

// TrackRow is a list cell bound to a track ID.
// Double-tap activates the track; right-click asks for its context menu.
type TrackRow struct {
	widget.Label

	trackID     string
	onActivated func(trackID string)
	onSecondary func(trackID string, pos fyneapp.Position)
}

// NewTrackRow creates a row that reports double-taps to onActivated.
func NewTrackRow(onActivated func(trackID string)) *TrackRow {
	row := &TrackRow{onActivated: onActivated}
	row.Truncation = fyneapp.TextTruncateEllipsis
	row.ExtendBaseWidget(row)
	return row
}

// Bind points the row at a track and sets its text.
func (r *TrackRow) Bind(trackID, text string) {
	r.trackID = trackID
	r.SetText(text)
}

// TrackID returns the bound track ID.
func (r *TrackRow) TrackID() string {
	return r.trackID
}

// SetOnSecondary sets the right-click callback.
func (r *TrackRow) SetOnSecondary(callback func(trackID string, pos fyneapp.Position)) {
	r.onSecondary = callback
}

// DoubleTapped implements fyne.DoubleTappable.
func (r *TrackRow) DoubleTapped(_ *fyneapp.PointEvent) {
	if r.onActivated != nil && r.trackID != "" {
		r.onActivated(r.trackID)
	}
}

// TappedSecondary implements fyne.SecondaryTappable.
func (r *TrackRow) TappedSecondary(pe *fyneapp.PointEvent) {
	if r.onSecondary != nil && r.trackID != "" {
		r.onSecondary(r.trackID, pe.AbsolutePosition)
	}
}
