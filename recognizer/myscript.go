package recognizer

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/thearijain/digitalink/ink"
)

const (
	defaultMyScriptURL = "https://cloud.myscript.com/api/v4.0/iink/batch"
	jiixMimeType       = "application/vnd.myscript.jiix"
)

// MyScriptConfig holds configuration for the MyScript batch recognizer.
type MyScriptConfig struct {
	ApplicationKey string
	HMACKey        string
	Lang           string        // Recognition language, e.g. "en_US"
	BaseURL        string        // Optional endpoint override (testing)
	MaxInFlight    int64         // Concurrent request cap, default 4
	Timeout        time.Duration // HTTP timeout, default 30s
}

// MyScript recognizes ink through the MyScript iink batch API. Requests are
// signed with HMAC-SHA512 over the JSON payload.
type MyScript struct {
	cfg  MyScriptConfig
	http *http.Client
	sem  *semaphore.Weighted
}

// NewMyScript creates a MyScript recognizer.
func NewMyScript(cfg MyScriptConfig) (*MyScript, error) {
	if cfg.ApplicationKey == "" {
		return nil, fmt.Errorf("application key is required")
	}
	if cfg.HMACKey == "" {
		return nil, fmt.Errorf("hmac key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultMyScriptURL
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &MyScript{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		sem:  semaphore.NewWeighted(cfg.MaxInFlight),
	}, nil
}

// Wire types for the iink batch API.

type batchInput struct {
	Configuration *batchConfiguration `json:"configuration,omitempty"`
	ContentType   string              `json:"contentType"`
	StrokeGroups  []*strokeGroup      `json:"strokeGroups"`
	Width         int32               `json:"width,omitempty"`
	Height        int32               `json:"height,omitempty"`
}

type batchConfiguration struct {
	Lang string `json:"lang,omitempty"`
}

type strokeGroup struct {
	Strokes []*wireStroke `json:"strokes"`
}

type wireStroke struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	T []int64   `json:"t,omitempty"`
}

type jiixWord struct {
	Label      string   `json:"label"`
	Candidates []string `json:"candidates"`
}

type jiixExport struct {
	Label string     `json:"label"`
	Words []jiixWord `json:"words"`
}

// Recognize sends the ink as a single stroke group and parses the JIIX
// export into ranked candidates. The API reports no confidence scores.
func (ms *MyScript) Recognize(ctx context.Context, k ink.Ink, rc Context) (*Result, error) {
	if err := ms.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire request slot: %w", err)
	}
	defer ms.sem.Release(1)

	payload, err := json.Marshal(buildBatch(k, rc, ms.cfg.Lang))
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	body, err := ms.send(ctx, payload)
	if err != nil {
		return nil, err
	}

	var export jiixExport
	if err := json.Unmarshal(body, &export); err != nil {
		return nil, fmt.Errorf("parse jiix export: %w", err)
	}

	return exportCandidates(export), nil
}

func buildBatch(k ink.Ink, rc Context, lang string) batchInput {
	group := &strokeGroup{}
	for _, s := range k.Strokes {
		if len(s.Points) == 0 {
			continue
		}
		w := &wireStroke{
			X: make([]float64, 0, len(s.Points)),
			Y: make([]float64, 0, len(s.Points)),
			T: make([]int64, 0, len(s.Points)),
		}
		for _, p := range s.Points {
			w.X = append(w.X, p.X)
			w.Y = append(w.Y, p.Y)
			w.T = append(w.T, p.T)
		}
		group.Strokes = append(group.Strokes, w)
	}

	return batchInput{
		Configuration: &batchConfiguration{Lang: lang},
		ContentType:   "Text",
		StrokeGroups:  []*strokeGroup{group},
		Width:         int32(rc.WritingArea.Width),
		Height:        int32(rc.WritingArea.Height),
	}
}

func (ms *MyScript) send(ctx context.Context, payload []byte) ([]byte, error) {
	mac := hmac.New(sha512.New, []byte(ms.cfg.ApplicationKey+ms.cfg.HMACKey))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ms.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", jiixMimeType+", application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("applicationKey", ms.cfg.ApplicationKey)
	req.Header.Set("hmac", signature)

	res, err := ms.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		slog.Debug("myscript request rejected", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("api error: %d - %s", res.StatusCode, string(body))
	}

	return body, nil
}

// exportCandidates ranks the full-label transcription first, then word-level
// alternates for single-word ink.
func exportCandidates(export jiixExport) *Result {
	res := &Result{}
	if export.Label != "" {
		res.Candidates = append(res.Candidates, Candidate{Text: export.Label})
	}
	if len(export.Words) == 1 {
		for _, alt := range export.Words[0].Candidates {
			if alt == export.Label {
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{Text: alt})
		}
	}
	return res
}
