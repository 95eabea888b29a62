package model

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// StatusFunc receives user-facing status messages emitted on state
// transitions.
type StatusFunc func(msg string)

// Tracker holds the currently selected model and its download state. It is
// safe for concurrent use; download notifications arriving on background
// goroutines are serialized through the tracker's lock.
type Tracker struct {
	manager Manager
	status  StatusFunc

	mu       sync.Mutex
	selected Model
	hasModel bool
	state    DownloadState
}

// NewTracker creates a tracker over the given manager. status may be nil.
func NewTracker(manager Manager, status StatusFunc) *Tracker {
	return &Tracker{
		manager: manager,
		status:  status,
		state:   StateNotRequested,
	}
}

// SelectDefaultLanguage selects the default model and requests its download.
func (t *Tracker) SelectDefaultLanguage() {
	t.Select(MustParse(DefaultLanguageTag))
}

// Select sets the selected model and issues a download request, even for an
// already present bundle (the manager resolves those immediately; see the
// Manager contract). Readiness is reflected right away when the bundle
// exists. Notifications for a previously selected model are superseded and
// will be ignored.
func (t *Tracker) Select(m Model) {
	t.mu.Lock()
	t.selected = m
	t.hasModel = true
	if t.manager.Downloaded(m) {
		t.state = StateDownloaded
	} else {
		t.state = StateDownloading
	}
	t.mu.Unlock()

	t.report(fmt.Sprintf("Selected language with tag %s", m))
	t.manager.Download(m, Options{
		AllowsCellular:           true,
		AllowsBackgroundDownload: true,
	})
}

// Handle applies a download notification. Events whose model does not match
// the current selection are stale and silently ignored.
func (t *Tracker) Handle(e Event) {
	t.mu.Lock()
	if !t.hasModel || !t.selected.Equal(e.Model) {
		t.mu.Unlock()
		slog.Debug("ignoring stale model event", "model", e.Model, "err", e.Err)
		return
	}
	if e.Err != nil {
		t.state = StateFailed
	} else {
		t.state = StateDownloaded
	}
	failed := e.Err != nil
	t.mu.Unlock()

	if failed {
		slog.Warn("model download failed", "model", e.Model, "error", e.Err)
		t.report("Model download failed")
		return
	}
	t.report("Model download succeeded")
}

// Watch pumps manager events into Handle until ctx is done or the manager
// closes its event channel. Run it in a goroutine.
func (t *Tracker) Watch(ctx context.Context) {
	events := t.manager.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			t.Handle(e)
		}
	}
}

// Ready reports whether the selected model is downloaded.
func (t *Tracker) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateDownloaded
}

// State returns the current download state.
func (t *Tracker) State() DownloadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Selected returns the selected model and whether one has been selected.
func (t *Tracker) Selected() (Model, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected, t.hasModel
}

func (t *Tracker) report(msg string) {
	if t.status != nil {
		t.status(msg)
	}
}
