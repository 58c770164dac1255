package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/reeltune/reeltune/internal/adapter/media"
)

// importExtensions lists what the file dialog offers for import.
var importExtensions = []string{
	media.ExtMP3, media.ExtFLAC, media.ExtWAV, media.ExtOGG,
	".mp4", ".mov", ".m4v", ".mkv", ".avi",
}

// FileDialog picks a single media file to import.
type FileDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
	startDir string
}

// NewFileDialog creates a new file dialog. startDir may be empty.
func NewFileDialog(window fyne.Window, startDir string, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
		startDir: startDir,
	}
}

// Show displays the file dialog.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		if d.callback != nil {
			d.callback(reader.URI().Path())
		}
	}, d.window)

	fd.SetFilter(storage.NewExtensionFileFilter(importExtensions))
	d.openAt(fd)
	fd.Show()
}

func (d *FileDialog) openAt(fd *dialog.FileDialog) {
	if d.startDir == "" {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(d.startDir))
	if err != nil {
		d.logger.Debug("last import dir unavailable", slog.String("dir", d.startDir), slog.Any("error", err))
		return
	}
	fd.SetLocation(lister)
}

// FolderDialog picks a folder whose files are all imported.
type FolderDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFolderDialog creates a new folder dialog.
func NewFolderDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FolderDialog {
	return &FolderDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the folder dialog.
func (d *FolderDialog) Show() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			d.logger.Error("folder dialog error", slog.Any("error", err))
			return
		}
		if uri == nil {
			return // User cancelled
		}

		if d.callback != nil {
			d.callback(uri.Path())
		}
	}, d.window)
}
