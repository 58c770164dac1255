// Package fyne provides the Fyne UI adapter.
// The Presenter maps bus events to a View and user gestures to service calls;
// MainWindow is the Fyne implementation of the View.
package fyne

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
	"github.com/reeltune/reeltune/internal/service"
)

// LibraryFilter selects which catalog tracks the library list shows.
type LibraryFilter int

const (
	FilterAll LibraryFilter = iota
	FilterFavorites
	FilterRecent
)

// Row is one line of a track list.
type Row struct {
	TrackID string
	Text    string
}

// NowPlaying describes the current track for display.
type NowPlaying struct {
	Title    string
	Subtitle string
	Artwork  []byte
	Favorite bool
	IsVideo  bool
}

// View is the passive UI driven by the Presenter.
// Implementations must be safe to call from any goroutine.
type View interface {
	SetNowPlaying(info NowPlaying)
	ClearNowPlaying()
	SetPlayState(playing bool)
	SetRepeatState(enabled bool)
	SetFavoriteState(favorite bool)
	SetProgress(position, duration time.Duration)
	SetUpNext(text string)
	SetSleepTimer(text string)
	SetLibrary(rows []Row)
	SetQueue(rows []Row, current int)
	SetImportProgress(fraction float64, visible bool)
	ShowNotification(title, message string)
}

// Presenter coordinates the playback session, the catalog and the view.
//
// Thread-safety: bus handlers run on whichever goroutine published the
// event, so presentation state is guarded by mu. Service calls are never
// made with mu held.
type Presenter struct {
	// Dependencies
	logger  *slog.Logger
	session *service.PlaybackSession
	catalog *service.CatalogService
	prefs   *service.PreferenceService
	bus     ports.EventBus
	clock   clockwork.Clock
	view    View

	recentLimit int

	// Presentation state
	filter  LibraryFilter
	query   string
	library []domain.Track

	subscriptions []domain.SubscriptionID
	stopTicker    chan struct{}
	wg            sync.WaitGroup

	// Concurrency control
	mu           sync.RWMutex
	renderMu     sync.Mutex // serializes state reads with the view updates they drive
	shutdownOnce sync.Once
}

// NewPresenter creates a presenter, subscribes it to the bus and syncs the
// view with the current session state.
func NewPresenter(
	logger *slog.Logger,
	session *service.PlaybackSession,
	catalog *service.CatalogService,
	prefs *service.PreferenceService,
	bus ports.EventBus,
	clock clockwork.Clock,
	view View,
	recentLimit int,
) *Presenter {
	p := &Presenter{
		logger:      logger,
		session:     session,
		catalog:     catalog,
		prefs:       prefs,
		bus:         bus,
		clock:       clock,
		view:        view,
		recentLimit: recentLimit,
		stopTicker:  make(chan struct{}),
	}

	p.subscribeToEvents()
	p.syncInitialState()

	p.wg.Add(1)
	go p.sleepCountdown()

	return p
}

func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Playback events
		domain.EventTrackStarted:  p.onTrackStarted,
		domain.EventTrackStopped:  p.onTrackStopped,
		domain.EventTrackError:    p.onTrackError,
		domain.EventTrackProgress: p.onTrackProgress,
		domain.EventStatusChanged: p.onStatusChanged,
		domain.EventRepeatToggled: p.onRepeatToggled,

		// Queue events
		domain.EventQueueChanged:     p.onQueueChanged,
		domain.EventTrackEnqueued:    p.onQueueChanged,
		domain.EventNextTrackChanged: p.onNextTrackChanged,

		// Sleep timer events
		domain.EventSleepTimerArmed:     p.onSleepTimer,
		domain.EventSleepTimerPaused:    p.onSleepTimer,
		domain.EventSleepTimerResumed:   p.onSleepTimer,
		domain.EventSleepTimerFired:     p.onSleepTimer,
		domain.EventSleepTimerCancelled: p.onSleepTimer,

		// Catalog events
		domain.EventImportStarted:   p.onImportStarted,
		domain.EventImportProgress:  p.onImportProgress,
		domain.EventImportCompleted: p.onImportCompleted,
		domain.EventTrackDeleted:    p.onTrackDeleted,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.bus.Subscribe(eventType, handler))
	}

	// Only the heart of the current track follows favorite toggles.
	isCurrent := func(e domain.Event) bool {
		fe, ok := e.(domain.FavoriteToggledEvent)
		current := p.session.CurrentTrack()
		return ok && current != nil && current.ID == fe.TrackID
	}
	if fb, ok := p.bus.(ports.FilteringEventBus); ok {
		p.subscriptions = append(p.subscriptions,
			fb.SubscribeFiltered(domain.EventFavoriteToggled, isCurrent, p.onFavoriteToggled))
	} else {
		p.subscriptions = append(p.subscriptions,
			p.bus.Subscribe(domain.EventFavoriteToggled, func(e domain.Event) {
				if isCurrent(e) {
					p.onFavoriteToggled(e)
				}
			}))
	}
}

// syncInitialState pushes the session state into the view.
func (p *Presenter) syncInitialState() {
	state := p.renderPlayback()

	if state.CurrentTrack != nil {
		p.view.SetNowPlaying(nowPlaying(*state.CurrentTrack))
		p.view.SetProgress(state.Position, state.Duration)
	} else {
		p.view.ClearNowPlaying()
	}

	p.view.SetSleepTimer(sleepText(state.SleepTimer))

	p.refreshQueue()
	p.refreshLibrary()
}

func nowPlaying(t domain.Track) NowPlaying {
	return NowPlaying{
		Title:    t.Title,
		Subtitle: subtitle(t),
		Artwork:  t.Artwork,
		Favorite: t.IsFavorite,
		IsVideo:  t.IsVideo,
	}
}

// Event handlers

func (p *Presenter) onTrackStarted(event domain.Event) {
	e, ok := event.(domain.TrackStartedEvent)
	if !ok {
		return
	}

	p.view.SetNowPlaying(nowPlaying(e.Track))
	p.view.SetProgress(0, e.Track.Duration)
	p.refreshQueue()

	if p.currentFilter() == FilterRecent {
		p.refreshLibrary()
	}
}

func (p *Presenter) onTrackStopped(domain.Event) {
	p.view.ClearNowPlaying()
	p.view.SetProgress(0, 0)
	p.renderPlayback()
	p.refreshQueue()
}

func (p *Presenter) onTrackError(event domain.Event) {
	e, ok := event.(domain.TrackErrorEvent)
	if !ok {
		return
	}

	message := e.Track.Title
	if errors.Is(e.Error, domain.ErrUnsupportedFormat) {
		message += ": this format cannot be played"
	} else if e.Error != nil {
		message += ": " + e.Error.Error()
	}
	p.view.ShowNotification("Playback Error", message)
}

func (p *Presenter) onTrackProgress(event domain.Event) {
	e, ok := event.(domain.TrackProgressEvent)
	if !ok {
		return
	}
	p.view.SetProgress(e.Position, e.Duration)
}

// Status, repeat and up-next are rendered from the session rather than
// from event payloads. Events from the transport goroutine and the UI
// goroutine may reach the bus out of order; the last render always reads
// the latest state.
func (p *Presenter) onStatusChanged(domain.Event) {
	p.renderPlayback()
}

func (p *Presenter) onRepeatToggled(domain.Event) {
	p.renderPlayback()
}

func (p *Presenter) onQueueChanged(domain.Event) {
	p.refreshQueue()
}

func (p *Presenter) onNextTrackChanged(domain.Event) {
	p.renderPlayback()
}

// renderPlayback pushes play state, repeat and up next from a fresh session
// snapshot and returns that snapshot.
func (p *Presenter) renderPlayback() domain.PlaybackState {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()

	state := p.session.State()
	p.view.SetPlayState(state.Status == domain.StatusPlaying || state.Status == domain.StatusLoading)
	p.view.SetRepeatState(state.Repeat)
	p.view.SetUpNext(upNextText(state.NextTrack))
	return state
}

func (p *Presenter) onFavoriteToggled(event domain.Event) {
	e, ok := event.(domain.FavoriteToggledEvent)
	if !ok {
		return
	}
	p.view.SetFavoriteState(e.Favorite)
}

func (p *Presenter) onSleepTimer(event domain.Event) {
	p.refreshSleep()

	if event.Type() == domain.EventSleepTimerFired {
		p.view.ShowNotification("Sleep Timer", "Playback paused")
	}
}

func (p *Presenter) onImportStarted(domain.Event) {
	p.view.SetImportProgress(0, true)
}

func (p *Presenter) onImportProgress(event domain.Event) {
	e, ok := event.(domain.ImportProgressEvent)
	if !ok {
		return
	}
	if pct := e.Progress.Percentage(); pct >= 0 {
		p.view.SetImportProgress(pct/100, true)
	}
}

func (p *Presenter) onImportCompleted(event domain.Event) {
	e, ok := event.(domain.ImportCompletedEvent)
	if !ok {
		return
	}

	p.view.SetImportProgress(1, false)
	p.view.ShowNotification("Import", importedText(len(e.Tracks)))
	p.refreshLibrary()
}

func (p *Presenter) onTrackDeleted(domain.Event) {
	p.refreshLibrary()
}

// Refresh helpers

func (p *Presenter) refreshQueue() {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()

	state := p.session.State()

	rows := make([]Row, 0, len(state.Queue))
	current := -1
	for i, id := range state.Queue {
		track, ok := p.catalog.LookupTrack(id)
		if !ok {
			continue
		}
		isCurrent := i == state.CurrentIndex && state.CurrentTrack != nil && state.CurrentTrack.ID == id
		if isCurrent {
			current = len(rows)
		}
		rows = append(rows, Row{TrackID: id, Text: queueRow(track, isCurrent)})
	}

	p.view.SetQueue(rows, current)
}

func (p *Presenter) refreshLibrary() {
	p.mu.RLock()
	filter, query := p.filter, p.query
	p.mu.RUnlock()

	ctx := context.Background()
	var tracks []domain.Track
	var err error

	switch {
	case query != "":
		tracks, err = p.catalog.Search(ctx, query, 0)
	case filter == FilterFavorites:
		tracks, err = p.catalog.Favorites(ctx)
	case filter == FilterRecent:
		tracks, err = p.catalog.RecentlyPlayed(ctx, p.recentLimit)
	default:
		tracks, err = p.catalog.All(ctx)
	}
	if err != nil {
		p.logger.Error("cannot load library", slog.Any("error", err))
		p.view.ShowNotification("Library Error", err.Error())
		return
	}

	now := p.clock.Now()
	rows := make([]Row, len(tracks))
	for i, t := range tracks {
		rows[i] = Row{TrackID: t.ID, Text: libraryRow(t, filter, now)}
	}

	p.mu.Lock()
	p.library = tracks
	p.mu.Unlock()

	p.view.SetLibrary(rows)
}

func (p *Presenter) refreshSleep() {
	p.view.SetSleepTimer(sleepText(p.session.SleepTimer()))
}

// sleepCountdown refreshes the sleep timer label once a second while armed.
func (p *Presenter) sleepCountdown() {
	defer p.wg.Done()

	ticker := p.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopTicker:
			return
		case <-ticker.Chan():
			if snap := p.session.SleepTimer(); snap != nil && !snap.Paused {
				p.view.SetSleepTimer(sleepText(snap))
			}
		}
	}
}

func (p *Presenter) currentFilter() LibraryFilter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter
}

func (p *Presenter) libraryTrack(id string) (domain.Track, []domain.Track, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, t := range p.library {
		if t.ID == id {
			listing := make([]domain.Track, len(p.library))
			copy(listing, p.library)
			return t, listing, true
		}
	}
	return domain.Track{}, nil, false
}

// queueTracks resolves the session queue to catalog tracks.
func (p *Presenter) queueTracks() []domain.Track {
	ids := p.session.Queue()
	tracks := make([]domain.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := p.catalog.LookupTrack(id); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

func (p *Presenter) report(title string, err error) {
	if err == nil {
		return
	}
	p.logger.Error(title, slog.Any("error", err))
	p.view.ShowNotification(title, err.Error())
}

// UI command handlers (called by the view)

// OnPlayPauseClicked toggles the current track, or starts the library from
// the top when nothing has been played yet.
func (p *Presenter) OnPlayPauseClicked() {
	if current := p.session.CurrentTrack(); current != nil {
		p.report("Playback Error", p.session.Play(*current, p.queueTracks()))
		return
	}

	p.mu.RLock()
	listing := make([]domain.Track, len(p.library))
	copy(listing, p.library)
	p.mu.RUnlock()

	if len(listing) == 0 {
		p.view.ShowNotification("Nothing to play", "Import some media first")
		return
	}
	p.report("Playback Error", p.session.Play(listing[0], listing))
}

// OnNextClicked skips to the next queue entry.
func (p *Presenter) OnNextClicked() {
	p.report("Playback Error", p.session.Next())
}

// OnPreviousClicked goes back to the previous queue entry.
func (p *Presenter) OnPreviousClicked() {
	p.report("Playback Error", p.session.Previous())
}

// OnRepeatClicked toggles repeat-one.
func (p *Presenter) OnRepeatClicked() {
	p.session.ToggleRepeat()
}

// OnSeekRequested seeks the current track.
func (p *Presenter) OnSeekRequested(position time.Duration) {
	p.report("Seek Error", p.session.Seek(position))
}

// OnFavoriteClicked likes or unlikes the current track.
func (p *Presenter) OnFavoriteClicked() {
	current := p.session.CurrentTrack()
	if current == nil {
		return
	}

	if _, err := p.catalog.ToggleFavorite(context.Background(), current.ID); err != nil {
		p.report("Library Error", err)
		return
	}
	p.refreshLibrary()
}

// OnSleepSelected arms the sleep timer and remembers d as the default.
func (p *Presenter) OnSleepSelected(d time.Duration) {
	if err := p.session.SetSleepTimer(d); err != nil {
		p.report("Sleep Timer", err)
		return
	}
	if err := p.prefs.SetDefaultSleep(d); err != nil {
		p.logger.Warn("cannot save default sleep", slog.Any("error", err))
	}
}

// OnSleepDefault arms the sleep timer with the saved default duration.
func (p *Presenter) OnSleepDefault() {
	p.OnSleepSelected(p.prefs.DefaultSleep())
}

// OnSleepCancelled disarms the sleep timer.
func (p *Presenter) OnSleepCancelled() {
	p.session.CancelSleepTimer()
}

// OnSleepPauseClicked freezes or continues the sleep countdown.
func (p *Presenter) OnSleepPauseClicked() {
	snap := p.session.SleepTimer()
	if snap == nil {
		return
	}
	if snap.Paused {
		p.report("Sleep Timer", p.session.ResumeSleepTimer())
		return
	}
	p.report("Sleep Timer", p.session.PauseSleepTimer())
}

// OnLibraryTrackActivated plays a library track with the listing as the queue.
func (p *Presenter) OnLibraryTrackActivated(id string) {
	track, listing, ok := p.libraryTrack(id)
	if !ok {
		return
	}
	p.report("Playback Error", p.session.Play(track, listing))
}

// OnPlayNextRequested queues a library track right after the current one.
func (p *Presenter) OnPlayNextRequested(id string) {
	track, _, ok := p.libraryTrack(id)
	if !ok {
		return
	}

	result, err := p.session.EnqueueNext(track)
	if errors.Is(err, domain.ErrNothingPlaying) {
		p.report("Playback Error", p.session.Play(track, nil))
		return
	}
	if err != nil {
		p.report("Queue Error", err)
		return
	}

	switch result {
	case domain.EnqueueAdded:
		p.view.ShowNotification("Queue", track.Title+" plays next")
	case domain.EnqueueMoved:
		p.view.ShowNotification("Queue", track.Title+" moved up to play next")
	}
}

// OnQueueEntryActivated plays a queue entry without replacing the queue.
func (p *Presenter) OnQueueEntryActivated(id string) {
	track, ok := p.catalog.LookupTrack(id)
	if !ok {
		return
	}
	p.report("Playback Error", p.session.Play(track, p.queueTracks()))
}

// OnQueueEntryRemoved drops an entry from the queue.
func (p *Presenter) OnQueueEntryRemoved(id string) {
	if err := p.session.RemoveFromQueue(id); err != nil && !errors.Is(err, domain.ErrTrackNotFound) {
		p.report("Queue Error", err)
	}
}

// OnDeleteRequested removes a track from the queue and the catalog.
func (p *Presenter) OnDeleteRequested(id string) {
	if err := p.session.RemoveFromQueue(id); err != nil && !errors.Is(err, domain.ErrTrackNotFound) {
		p.report("Queue Error", err)
		return
	}
	p.report("Library Error", p.catalog.Delete(context.Background(), id))
}

// OnFilterChanged switches the library listing and clears the search.
func (p *Presenter) OnFilterChanged(filter LibraryFilter) {
	p.mu.Lock()
	p.filter = filter
	p.query = ""
	p.mu.Unlock()

	p.refreshLibrary()
}

// OnSearchChanged filters the library by query. An empty query restores
// the selected listing.
func (p *Presenter) OnSearchChanged(query string) {
	p.mu.Lock()
	p.query = query
	p.mu.Unlock()

	p.refreshLibrary()
}

// OnFilesSelected imports the given files. It blocks until the import ends
// and is meant to be called off the UI goroutine.
func (p *Presenter) OnFilesSelected(paths []string) {
	if len(paths) == 0 {
		return
	}

	if err := p.prefs.SetLastImportDir(filepath.Dir(paths[0])); err != nil {
		p.logger.Warn("cannot save import dir", slog.Any("error", err))
	}

	if _, err := p.catalog.Import(context.Background(), paths); err != nil {
		p.report("Import Error", err)
	}
}

// OnFolderSelected imports every file under dir, descending into
// subfolders. Files the catalog cannot import are skipped by Import.
func (p *Presenter) OnFolderSelected(dir string) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		p.report("Import Error", fmt.Errorf("scan folder: %w", err))
		return
	}

	if len(paths) == 0 {
		p.view.ShowNotification("Import", "The folder is empty")
		return
	}
	p.OnFilesSelected(paths)
}

// LastImportDir returns where the import dialogs should open.
func (p *Presenter) LastImportDir() string {
	return p.prefs.LastImportDir()
}

// Shutdown unsubscribes from the bus and stops the countdown goroutine.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		for _, id := range p.subscriptions {
			p.bus.Unsubscribe(id)
		}
		close(p.stopTicker)
		p.wg.Wait()
	})
}
