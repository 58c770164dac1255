package fyne

import (
	"strings"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize/english"

	"github.com/reeltune/reeltune/internal/adapter/ui/fyne/widgets"
)

// QueueWindow shows the playback queue with a quick filter.
// Rows are pushed by the MainWindow; gestures go to the Presenter.
// All methods must run on the UI goroutine.
type QueueWindow struct {
	window      fyneapp.Window
	list        *widget.List
	searchEntry *widget.Entry

	// Data state
	data    []Row // Filtered view (shown in the list)
	rows    []Row // Full queue
	current int   // Index of the current entry in rows

	presenter *Presenter

	// Lifecycle
	onWindowClosed func()
	isVisible      bool
}

// NewQueueWindow creates a new queue window.
func NewQueueWindow(app fyneapp.App, presenter *Presenter) *QueueWindow {
	w := &QueueWindow{
		presenter: presenter,
		current:   -1,
	}

	w.window = app.NewWindow("Queue")
	w.window.Resize(fyneapp.NewSize(420, 520))

	w.buildUI()

	w.window.SetOnClosed(func() {
		w.isVisible = false
		if w.onWindowClosed != nil {
			w.onWindowClosed()
		}
	})

	return w
}

func (w *QueueWindow) buildUI() {
	w.searchEntry = widget.NewEntry()
	w.searchEntry.SetPlaceHolder("Filter queue...")
	w.searchEntry.OnChanged = func(string) {
		w.applyFilter()
	}

	w.list = widget.NewList(
		func() int {
			return len(w.data)
		},
		func() fyneapp.CanvasObject {
			row := widgets.NewTrackRow(w.onRowActivated)
			row.SetOnSecondary(w.showRowMenu)
			return row
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			row, ok := obj.(*widgets.TrackRow)
			if !ok || i < 0 || i >= len(w.data) {
				return
			}
			row.Bind(w.data[i].TrackID, w.data[i].Text)
		},
	)

	w.window.SetContent(container.NewBorder(w.searchEntry, nil, nil, nil, w.list))
}

func (w *QueueWindow) onRowActivated(trackID string) {
	if w.presenter != nil {
		w.presenter.OnQueueEntryActivated(trackID)
	}
}

func (w *QueueWindow) showRowMenu(trackID string, pos fyneapp.Position) {
	if w.presenter == nil {
		return
	}

	menu := fyneapp.NewMenu("",
		fyneapp.NewMenuItem("Play", func() { w.presenter.OnQueueEntryActivated(trackID) }),
		fyneapp.NewMenuItem("Remove from Queue", func() { w.presenter.OnQueueEntryRemoved(trackID) }),
	)
	widget.ShowPopUpMenuAtPosition(menu, w.window.Canvas(), pos)
}

// SetQueue replaces the rows and highlights the current entry.
func (w *QueueWindow) SetQueue(rows []Row, current int) {
	w.rows = rows
	w.current = current
	w.applyFilter()
}

// applyFilter re-filters the rows by the search text and refreshes the list.
func (w *QueueWindow) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(w.searchEntry.Text))

	if query == "" {
		w.data = w.rows
	} else {
		w.data = make([]Row, 0, len(w.rows))
		for _, row := range w.rows {
			if strings.Contains(strings.ToLower(row.Text), query) {
				w.data = append(w.data, row)
			}
		}
	}

	w.window.SetTitle("Queue (" + english.Plural(len(w.rows), "track", "") + ")")
	w.list.Refresh()
	w.highlightCurrent()
}

// highlightCurrent selects the current entry unless the filter hides it.
func (w *QueueWindow) highlightCurrent() {
	if w.current < 0 || w.current >= len(w.rows) {
		w.list.UnselectAll()
		return
	}

	currentID := w.rows[w.current].TrackID
	for i, row := range w.data {
		if row.TrackID == currentID {
			w.list.Select(i)
			return
		}
	}
	w.list.UnselectAll()
}

// Show displays the queue window.
func (w *QueueWindow) Show() {
	w.isVisible = true
	w.window.Show()
}

// Close closes the queue window.
func (w *QueueWindow) Close() {
	w.isVisible = false
	w.window.Close()
}

// IsVisible returns whether the window is currently visible.
func (w *QueueWindow) IsVisible() bool {
	return w.isVisible
}

// SetOnWindowClosed sets a callback to be invoked when the window is closed.
// This allows the MainWindow to drop its reference.
func (w *QueueWindow) SetOnWindowClosed(callback func()) {
	w.onWindowClosed = callback
}
