// Package app wires configuration, the model manager, the recognizer and the
// coordinator into a runnable session for the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thearijain/digitalink/cache"
	"github.com/thearijain/digitalink/config"
	"github.com/thearijain/digitalink/langid"
	"github.com/thearijain/digitalink/model"
	"github.com/thearijain/digitalink/recognition"
	"github.com/thearijain/digitalink/recognizer"
	"github.com/thearijain/digitalink/trace"
)

// App owns the wired components for one CLI session.
type App struct {
	cfg      *config.Config
	reporter *ConsoleReporter
	cache    *cache.Cache
	manager  *model.HTTPManager
	tracker  *model.Tracker
	coord    *recognition.Coordinator
	detector *langid.Detector

	cancelWatch context.CancelFunc
}

// New wires an App from configuration.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	a := &App{
		cfg:      cfg,
		reporter: NewConsoleReporter(),
	}

	manager, err := model.NewHTTPManager(model.HTTPManagerConfig{
		ModelDir: cfg.ModelDir,
		Progress: func(m model.Model, pct int) {
			slog.Debug("model download progress", "model", m, "pct", pct)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create model manager: %w", err)
	}
	a.manager = manager
	a.tracker = model.NewTracker(manager, a.reporter.DisplayStatusMessage)

	rec, err := recognizer.New(recognizer.Config{
		Backend: cfg.Recognizer.Backend,
		MyScript: recognizer.MyScriptConfig{
			ApplicationKey: cfg.Recognizer.ApplicationKey,
			HMACKey:        cfg.Recognizer.HMACKey,
			Lang:           cfg.DefaultLanguage,
		},
		OpenAI: recognizer.OpenAIConfig{
			APIKey:  cfg.Recognizer.APIKey,
			BaseURL: cfg.Recognizer.BaseURL,
			Model:   cfg.Recognizer.Model,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create recognizer: %w", err)
	}

	if cfg.CacheDir != "" {
		c, err := cache.New(cfg.CacheDir)
		if err != nil {
			slog.Warn("recognition cache disabled", "error", err)
		} else {
			a.cache = c
			rec = recognizer.NewCached(rec, c, cfg.DefaultLanguage)
			slog.Info("recognition cache enabled", "path", cfg.CacheDir)
		}
	}

	a.coord = recognition.NewCoordinator(recognition.Config{
		Recognizer: rec,
		Tracker:    a.tracker,
		Reporter:   a.reporter,
		WritingArea: recognizer.WritingArea{
			Width:  cfg.WritingArea.Width,
			Height: cfg.WritingArea.Height,
		},
	})
	a.detector = langid.New()

	return a, nil
}

// Start selects the configured language and begins watching download events.
func (a *App) Start(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	a.cancelWatch = cancel
	go a.tracker.Watch(watchCtx)

	m, err := model.Parse(a.cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("parse default language: %w", err)
	}
	a.tracker.Select(m)
	return nil
}

// WaitModelReady blocks until the selected model is downloaded, its download
// fails, or ctx is done.
func (a *App) WaitModelReady(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		switch a.tracker.State() {
		case model.StateDownloaded:
			return nil
		case model.StateFailed:
			return fmt.Errorf("model download failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunTrace replays a recorded ink session through the coordinator,
// recognizing whenever the activity monitor reports a pause and once more for
// whatever remains at the end.
func (a *App) RunTrace(ctx context.Context, tr *trace.Trace, realtime bool) error {
	monitor := recognition.NewActivityMonitor(
		200*time.Millisecond, // minWrite
		10*time.Second,       // maxWrite
		800*time.Millisecond, // pause
		500*time.Millisecond, // cooldown
	)

	err := tr.Replay(ctx, realtime, func(e trace.Event) error {
		// Idle probe first: an active observation refreshes the idle clock,
		// so the gap since the previous event must be measured before it.
		if monitor.Observe(false, e.Point.T).ShouldRecognize {
			a.coord.Recognize(ctx)
		}

		switch e.Kind {
		case trace.PenDown:
			a.coord.StartStroke(e.Point)
		case trace.PenMove:
			if err := a.coord.ContinueStroke(e.Point); err != nil {
				return err
			}
		case trace.PenUp:
			if err := a.coord.EndStroke(e.Point); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown event kind %q", e.Kind)
		}

		if monitor.Observe(true, e.Point.T).ShouldRecognize {
			a.coord.Recognize(ctx)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replay trace: %w", err)
	}

	if a.coord.PendingStrokes() > 0 {
		a.coord.Recognize(ctx)
	}

	return a.waitDone(ctx)
}

// waitDone blocks until every dispatched recognition has completed.
func (a *App) waitDone(ctx context.Context) error {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		done := true
		for _, ri := range a.coord.History() {
			if !ri.Done {
				done = false
				break
			}
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Summary returns the recognized texts in order and the identified language
// of the combined text, if confident.
func (a *App) Summary() ([]string, string) {
	var texts []string
	var joined string
	for _, ri := range a.coord.History() {
		texts = append(texts, ri.Text)
		if ri.Text != "" && ri.Text != "error" {
			if joined != "" {
				joined += " "
			}
			joined += ri.Text
		}
	}

	lang, ok := a.detector.Detect(joined)
	if !ok {
		lang = ""
	}
	return texts, lang
}

// Coordinator exposes the coordinator for interactive callers.
func (a *App) Coordinator() *recognition.Coordinator { return a.coord }

// Close releases resources.
func (a *App) Close() {
	if a.cancelWatch != nil {
		a.cancelWatch()
	}
	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			slog.Error("close model manager", "error", err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Error("close cache", "error", err)
		}
	}
}
