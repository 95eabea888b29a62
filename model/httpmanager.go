package model

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// catalog maps language tags to downloadable model bundles. Sizes are
// approximate and only drive progress reporting.
var catalog = map[string]struct {
	URL  string
	Size int64
}{
	"en-US": {"https://models.digitalink.dev/ink/en-US.bin", 20 * 1024 * 1024},
	"en-GB": {"https://models.digitalink.dev/ink/en-GB.bin", 20 * 1024 * 1024},
	"de":    {"https://models.digitalink.dev/ink/de.bin", 22 * 1024 * 1024},
	"fr":    {"https://models.digitalink.dev/ink/fr.bin", 22 * 1024 * 1024},
	"es":    {"https://models.digitalink.dev/ink/es.bin", 21 * 1024 * 1024},
	"zh":    {"https://models.digitalink.dev/ink/zh.bin", 48 * 1024 * 1024},
}

// HTTPManagerConfig holds configuration for HTTPManager.
type HTTPManagerConfig struct {
	ModelDir string                 // Directory to store model bundles
	BaseURL  string                 // Optional override for the catalog host (testing)
	Progress func(m Model, pct int) // Optional download progress callback
	Client   *http.Client           // Optional HTTP client
}

// HTTPManager downloads model bundles over HTTP into a local directory.
// It implements Manager.
type HTTPManager struct {
	dir      string
	baseURL  string
	progress func(m Model, pct int)
	http     *http.Client

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	events chan Event
	done   chan struct{}
}

// NewHTTPManager creates a manager storing bundles under cfg.ModelDir.
func NewHTTPManager(cfg HTTPManagerConfig) (*HTTPManager, error) {
	if cfg.ModelDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		cfg.ModelDir = filepath.Join(home, ".digitalink", "models")
	}
	if err := os.MkdirAll(cfg.ModelDir, 0755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &HTTPManager{
		dir:      cfg.ModelDir,
		baseURL:  cfg.BaseURL,
		progress: cfg.Progress,
		http:     client,
		events:   make(chan Event, 4),
		done:     make(chan struct{}),
	}, nil
}

// Download fetches the model bundle asynchronously. Exactly one Event is
// delivered per call.
func (h *HTTPManager) Download(m Model, opts Options) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()

	slog.Info("model download requested",
		"model", m,
		"cellular", opts.AllowsCellular,
		"background", opts.AllowsBackgroundDownload)

	go func() {
		defer h.wg.Done()
		err := h.fetch(m)
		// The send must never block Close: with the buffer full and the
		// watcher gone, Close's wait would deadlock.
		select {
		case h.events <- Event{Model: m, Err: err}:
		case <-h.done:
		}
	}()
}

// Downloaded reports whether the bundle file exists locally.
func (h *HTTPManager) Downloaded(m Model) bool {
	_, err := os.Stat(h.bundlePath(m))
	return err == nil
}

// Events returns the download notification channel.
func (h *HTTPManager) Events() <-chan Event {
	return h.events
}

// Close waits for in-flight downloads and closes the event channel.
func (h *HTTPManager) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.done)
	h.wg.Wait()
	close(h.events)
	return nil
}

func (h *HTTPManager) bundlePath(m Model) string {
	return filepath.Join(h.dir, m.String()+".bin")
}

func (h *HTTPManager) fetch(m Model) error {
	if h.Downloaded(m) {
		return nil
	}

	entry, ok := catalog[m.String()]
	if !ok {
		return fmt.Errorf("no model bundle for tag %s", m)
	}
	url := entry.URL
	if h.baseURL != "" {
		url = strings.TrimSuffix(h.baseURL, "/") + "/" + m.String() + ".bin"
	}

	resp, err := h.http.Get(url)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status: %d", resp.StatusCode)
	}

	expected := resp.ContentLength
	if expected <= 0 {
		expected = entry.Size
	}

	// Download to a temp file first so a partial bundle never looks installed.
	dst := h.bundlePath(m)
	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	var downloaded int64
	buf := make([]byte, 32*1024)
	lastPct := 0

	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write file: %w", werr)
			}
			downloaded += int64(n)

			if expected > 0 && h.progress != nil {
				pct := int(downloaded * 100 / expected)
				if pct > lastPct {
					lastPct = pct
					h.progress(m, pct)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}

	slog.Info("model bundle downloaded", "model", m, "bytes", downloaded, "path", dst)
	return nil
}
