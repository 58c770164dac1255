package widgets

import (
	"testing"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestTrackRow_DoubleTapActivatesBoundTrack(t *testing.T) {
	test.NewApp()

	var activated []string
	row := NewTrackRow(func(id string) { activated = append(activated, id) })

	row.DoubleTapped(&fyneapp.PointEvent{})
	assert.Empty(t, activated, "unbound rows stay silent")

	row.Bind("t1", "Blue Monday")
	assert.Equal(t, "Blue Monday", row.Text)
	assert.Equal(t, "t1", row.TrackID())

	test.DoubleTap(row)
	assert.Equal(t, []string{"t1"}, activated)

	row.Bind("t2", "Yellow")
	row.DoubleTapped(&fyneapp.PointEvent{})
	assert.Equal(t, []string{"t1", "t2"}, activated)
}

func TestTrackRow_SecondaryTap(t *testing.T) {
	test.NewApp()

	row := NewTrackRow(nil)
	row.Bind("t1", "Blue Monday")

	// No callback set yet.
	row.TappedSecondary(&fyneapp.PointEvent{})

	var got string
	var at fyneapp.Position
	row.SetOnSecondary(func(id string, pos fyneapp.Position) {
		got = id
		at = pos
	})

	row.TappedSecondary(&fyneapp.PointEvent{AbsolutePosition: fyneapp.NewPos(10, 20)})
	assert.Equal(t, "t1", got)
	assert.Equal(t, fyneapp.NewPos(10, 20), at)
}
