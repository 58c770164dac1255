package fyne

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/reeltune/reeltune/internal/adapter/ui/fyne/widgets"
	"github.com/reeltune/reeltune/res"
)

// Window constants.
const (
	APPNAME = "ReelTune"
	WIDTH   = 900
	HEIGHT  = 600
)

const (
	heartOn  = "♥"
	heartOff = "♡"
)

var filterLabels = []string{"All", "Favorites", "Recent"}

// MainWindow is the main UI window implementing the View interface.
//
// It is a "dumb view": every View method marshals onto the UI goroutine
// with fyne.Do, and every gesture is forwarded to the Presenter.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// Now playing
	artwork        *canvas.Image
	titleLabel     *widget.Label
	subtitleLabel  *widget.Label
	prevButton     *widget.Button
	playButton     *widget.Button
	nextButton     *widget.Button
	repeatButton   *widget.Button
	favoriteButton *widget.Button
	progressSlider *widget.Slider
	currentTime    *widget.Label
	endTime        *widget.Label
	upNextLabel    *widget.Label
	sleepLabel     *widget.Label

	// Library
	filterGroup  *widget.RadioGroup
	searchEntry  *widget.Entry
	libraryList  *widget.List
	libraryRows  []Row
	importBar    *widget.ProgressBar
	queueRows    []Row
	queueCurrent int

	queueWindow *QueueWindow

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App, logger *slog.Logger) *MainWindow {
	w := &MainWindow{
		app:          app,
		logger:       logger,
		queueCurrent: -1,
	}

	w.window = app.NewWindow(APPNAME)
	w.buildUI()

	w.window.Resize(fyneapp.NewSize(WIDTH, HEIGHT))
	w.app.SetIcon(theme.MediaMusicIcon())

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.artwork = canvas.NewImageFromResource(theme.MediaMusicIcon())
	w.artwork.FillMode = canvas.ImageFillContain
	w.artwork.SetMinSize(fyneapp.NewSize(220, 220))

	w.titleLabel = widget.NewLabel("Nothing playing")
	w.titleLabel.TextStyle = fyneapp.TextStyle{Bold: true}
	w.titleLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.subtitleLabel = widget.NewLabel("")
	w.subtitleLabel.Truncation = fyneapp.TextTruncateEllipsis

	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nil)
	w.repeatButton = widget.NewButtonWithIcon("", theme.MediaReplayIcon(), nil)
	w.favoriteButton = widget.NewButton(heartOff, nil)
	w.favoriteButton.Disable()

	w.progressSlider = widget.NewSlider(0, 1)
	w.currentTime = widget.NewLabel(formatClock(0))
	w.endTime = widget.NewLabel(formatClock(0))

	w.upNextLabel = widget.NewLabel("")
	w.upNextLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.sleepLabel = widget.NewLabel("")

	buttons := container.NewHBox(w.prevButton, w.playButton, w.nextButton, w.repeatButton, w.favoriteButton)
	slider := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)
	nowPlaying := container.NewBorder(
		nil,
		container.NewVBox(w.titleLabel, w.subtitleLabel, buttons, slider, w.upNextLabel, w.sleepLabel),
		nil, nil,
		w.artwork,
	)

	w.filterGroup = widget.NewRadioGroup(filterLabels, nil)
	w.filterGroup.Horizontal = true
	w.filterGroup.Required = true
	w.filterGroup.SetSelected(filterLabels[FilterAll])

	w.searchEntry = widget.NewEntry()
	w.searchEntry.SetPlaceHolder("Search...")

	w.libraryList = widget.NewList(
		func() int {
			return len(w.libraryRows)
		},
		func() fyneapp.CanvasObject {
			row := widgets.NewTrackRow(w.onLibraryActivated)
			row.SetOnSecondary(w.showLibraryMenu)
			return row
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			row, ok := obj.(*widgets.TrackRow)
			if !ok || i < 0 || i >= len(w.libraryRows) {
				return
			}
			row.Bind(w.libraryRows[i].TrackID, w.libraryRows[i].Text)
		},
	)

	w.importBar = widget.NewProgressBar()
	w.importBar.Hide()

	library := container.NewBorder(
		container.NewVBox(w.filterGroup, w.searchEntry),
		w.importBar,
		nil, nil,
		w.libraryList,
	)

	split := container.NewHSplit(nowPlaying, library)
	split.Offset = 0.4
	w.window.SetContent(container.NewPadded(split))

	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.playButton.OnTapped = w.presenter.OnPlayPauseClicked
	w.nextButton.OnTapped = w.presenter.OnNextClicked
	w.prevButton.OnTapped = w.presenter.OnPreviousClicked
	w.repeatButton.OnTapped = w.presenter.OnRepeatClicked
	w.favoriteButton.OnTapped = w.presenter.OnFavoriteClicked

	// Only user drags seek; SetProgress writes Value directly.
	w.progressSlider.OnChangeEnded = func(value float64) {
		w.presenter.OnSeekRequested(time.Duration(value * float64(time.Second)))
	}

	w.filterGroup.OnChanged = func(selected string) {
		for i, label := range filterLabels {
			if label == selected {
				w.searchEntry.SetText("")
				w.presenter.OnFilterChanged(LibraryFilter(i))
				return
			}
		}
	}

	w.searchEntry.OnChanged = w.presenter.OnSearchChanged
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	separator := fyneapp.NewMenuItemSeparator()

	importFile := fyneapp.NewMenuItem("Import File...", w.handleImportFile)
	importFolder := fyneapp.NewMenuItem("Import Folder...", w.handleImportFolder)
	viewQueue := fyneapp.NewMenuItem("View Queue", w.showQueue)
	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})
	fileMenu := fyneapp.NewMenu("File", importFile, importFolder, separator, viewQueue, separator, exitMenu)

	sleepItem := func(label string, d time.Duration) *fyneapp.MenuItem {
		return fyneapp.NewMenuItem(label, func() {
			if w.presenter != nil {
				w.presenter.OnSleepSelected(d)
			}
		})
	}
	sleepMenu := fyneapp.NewMenu("Sleep",
		fyneapp.NewMenuItem("Default", func() {
			if w.presenter != nil {
				w.presenter.OnSleepDefault()
			}
		}),
		sleepItem("15 minutes", 15*time.Minute),
		sleepItem("30 minutes", 30*time.Minute),
		sleepItem("1 hour", time.Hour),
		separator,
		fyneapp.NewMenuItem("Pause / Resume", func() {
			if w.presenter != nil {
				w.presenter.OnSleepPauseClicked()
			}
		}),
		fyneapp.NewMenuItem("Cancel", func() {
			if w.presenter != nil {
				w.presenter.OnSleepCancelled()
			}
		}),
	)

	helpMenu := fyneapp.NewMenu("Help", fyneapp.NewMenuItem("About", w.showAbout))

	return []*fyneapp.Menu{fileMenu, sleepMenu, helpMenu}
}

func (w *MainWindow) handleImportFile() {
	if w.presenter == nil {
		return
	}

	NewFileDialog(w.window, w.presenter.LastImportDir(), func(path string) {
		// Imports copy files; keep them off the UI goroutine.
		go w.presenter.OnFilesSelected([]string{path})
	}, w.logger).Show()
}

func (w *MainWindow) handleImportFolder() {
	if w.presenter == nil {
		return
	}

	NewFolderDialog(w.window, func(dir string) {
		go w.presenter.OnFolderSelected(dir)
	}, w.logger).Show()
}

func (w *MainWindow) showAbout() {
	content := widget.NewRichTextFromMarkdown(res.AboutContent)
	dialog.ShowCustom("About "+APPNAME, "Close", content, w.window)
}

func (w *MainWindow) onLibraryActivated(trackID string) {
	if w.presenter != nil {
		w.presenter.OnLibraryTrackActivated(trackID)
	}
}

func (w *MainWindow) showLibraryMenu(trackID string, pos fyneapp.Position) {
	if w.presenter == nil {
		return
	}

	menu := fyneapp.NewMenu("",
		fyneapp.NewMenuItem("Play", func() { w.presenter.OnLibraryTrackActivated(trackID) }),
		fyneapp.NewMenuItem("Play Next", func() { w.presenter.OnPlayNextRequested(trackID) }),
		fyneapp.NewMenuItemSeparator(),
		fyneapp.NewMenuItem("Delete", func() {
			dialog.ShowConfirm("Delete track", "Remove this track from the library and disk?", func(ok bool) {
				if ok {
					w.presenter.OnDeleteRequested(trackID)
				}
			}, w.window)
		}),
	)
	widget.ShowPopUpMenuAtPosition(menu, w.window.Canvas(), pos)
}

func (w *MainWindow) showQueue() {
	if w.presenter == nil {
		return
	}

	if w.queueWindow == nil {
		w.queueWindow = NewQueueWindow(w.app, w.presenter)
		w.queueWindow.SetOnWindowClosed(func() {
			w.queueWindow = nil
		})
		w.queueWindow.SetQueue(w.queueRows, w.queueCurrent)
	}
	w.queueWindow.Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	shortcuts := map[fyneapp.KeyName]func(){
		fyneapp.KeySpace: w.presenter.OnPlayPauseClicked,
		fyneapp.KeyRight: w.presenter.OnNextClicked,
		fyneapp.KeyLeft:  w.presenter.OnPreviousClicked,
		fyneapp.KeyR:     w.presenter.OnRepeatClicked,
	}
	for key, action := range shortcuts {
		w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
			KeyName:  key,
			Modifier: fyneapp.KeyModifierAlt,
		}, func(fyneapp.Shortcut) {
			action()
		})
	}
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// SetOnClosed registers a callback run when the main window closes.
func (w *MainWindow) SetOnClosed(callback func()) {
	w.window.SetOnClosed(callback)
}

// Close closes the queue window and the main window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		if w.queueWindow != nil {
			w.queueWindow.Close()
		}
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// View interface implementation

// SetNowPlaying shows the current track.
func (w *MainWindow) SetNowPlaying(info NowPlaying) {
	fyneapp.Do(func() {
		w.titleLabel.SetText(info.Title)
		w.subtitleLabel.SetText(info.Subtitle)
		w.setFavorite(info.Favorite)
		w.favoriteButton.Enable()
		w.setArtwork(info.Artwork, info.IsVideo)
	})
}

// ClearNowPlaying resets the now-playing area.
func (w *MainWindow) ClearNowPlaying() {
	fyneapp.Do(func() {
		w.titleLabel.SetText("Nothing playing")
		w.subtitleLabel.SetText("")
		w.setFavorite(false)
		w.favoriteButton.Disable()
		w.setArtwork(nil, false)
	})
}

func (w *MainWindow) setArtwork(data []byte, isVideo bool) {
	if len(data) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			w.artwork.Resource = nil
			w.artwork.Image = img
			w.artwork.Refresh()
			return
		}
	}

	w.artwork.Image = nil
	if isVideo {
		w.artwork.Resource = theme.MediaVideoIcon()
	} else {
		w.artwork.Resource = theme.MediaMusicIcon()
	}
	w.artwork.Refresh()
}

func (w *MainWindow) setFavorite(favorite bool) {
	if favorite {
		w.favoriteButton.SetText(heartOn)
	} else {
		w.favoriteButton.SetText(heartOff)
	}
}

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

// SetRepeatState highlights the repeat button while repeat-one is on.
func (w *MainWindow) SetRepeatState(enabled bool) {
	fyneapp.Do(func() {
		if enabled {
			w.repeatButton.Importance = widget.HighImportance
		} else {
			w.repeatButton.Importance = widget.MediumImportance
		}
		w.repeatButton.Refresh()
	})
}

// SetFavoriteState updates the heart of the current track.
func (w *MainWindow) SetFavoriteState(favorite bool) {
	fyneapp.Do(func() {
		w.setFavorite(favorite)
	})
}

// SetProgress updates the progress slider and the time labels.
func (w *MainWindow) SetProgress(position, duration time.Duration) {
	fyneapp.Do(func() {
		w.progressSlider.Max = max(duration.Seconds(), 1)
		w.progressSlider.Value = min(position.Seconds(), w.progressSlider.Max)
		w.progressSlider.Refresh()
		w.currentTime.SetText(formatClock(position))
		w.endTime.SetText(formatClock(duration))
	})
}

// SetUpNext shows the derived next track.
func (w *MainWindow) SetUpNext(text string) {
	fyneapp.Do(func() {
		w.upNextLabel.SetText(text)
	})
}

// SetSleepTimer shows the sleep countdown; empty hides it.
func (w *MainWindow) SetSleepTimer(text string) {
	fyneapp.Do(func() {
		w.sleepLabel.SetText(text)
	})
}

// SetLibrary replaces the library listing.
func (w *MainWindow) SetLibrary(rows []Row) {
	fyneapp.Do(func() {
		w.libraryRows = rows
		w.libraryList.UnselectAll()
		w.libraryList.Refresh()
	})
}

// SetQueue forwards the queue to the queue window when it is open.
func (w *MainWindow) SetQueue(rows []Row, current int) {
	fyneapp.Do(func() {
		w.queueRows = rows
		w.queueCurrent = current
		if w.queueWindow != nil {
			w.queueWindow.SetQueue(rows, current)
		}
	})
}

// SetImportProgress shows or hides the import progress bar.
func (w *MainWindow) SetImportProgress(fraction float64, visible bool) {
	fyneapp.Do(func() {
		w.importBar.SetValue(fraction)
		if visible {
			w.importBar.Show()
		} else {
			w.importBar.Hide()
		}
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// Verify View implementation
var _ View = (*MainWindow)(nil)
