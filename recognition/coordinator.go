// Package recognition coordinates stroke capture, model readiness and
// recognition dispatch. The Coordinator is the single owner of stroke, ink
// and history state.
package recognition

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/thearijain/digitalink/ink"
	"github.com/thearijain/digitalink/model"
	"github.com/thearijain/digitalink/recognizer"
)

// errorSentinel is stored on a RecognizedInk whose recognition failed.
const errorSentinel = "error"

// Reporter is the capability set the coordinator needs from the UI layer.
type Reporter interface {
	// ClearTemporaryInk tells the UI to wipe its temporary drawing surface.
	ClearTemporaryInk()
	// DisplayStatusMessage shows a user-facing status line.
	DisplayStatusMessage(msg string)
}

// State is the coordinator lifecycle state.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateReadyToRecognize
	StateRecognizing
)

// String returns a short state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateReadyToRecognize:
		return "ready"
	case StateRecognizing:
		return "recognizing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RecognizedInk pairs an ink unit with its recognition outcome. Text is empty
// until the recognizer completes and holds the "error" sentinel on failure.
type RecognizedInk struct {
	ID   string
	Ink  ink.Ink
	Text string
	Done bool
}

// Config holds coordinator configuration.
type Config struct {
	Recognizer recognizer.Recognizer
	Tracker    *model.Tracker
	Reporter   Reporter

	// WritingArea is the fixed drawing surface size sent with every request.
	WritingArea recognizer.WritingArea

	// MaxPreContext bounds how many recent recognized texts are joined into
	// the pre-context of the next request. Default 3.
	MaxPreContext int
}

// Coordinator drives the draw/recognize/clear lifecycle. Touch events and
// commands must arrive from one logical control flow; async completions are
// serialized through the coordinator's lock and mutate only the state they
// captured at dispatch time.
type Coordinator struct {
	rec      recognizer.Recognizer
	tracker  *model.Tracker
	reporter Reporter
	area     recognizer.WritingArea
	maxCtx   int

	mu          sync.Mutex
	builder     *ink.Builder
	assembler   *ink.Assembler
	history     []*RecognizedInk
	recentTexts []string
	state       State
	generation  uint64
}

// NewCoordinator creates a coordinator. Reporter may be nil.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.MaxPreContext == 0 {
		cfg.MaxPreContext = 3
	}
	return &Coordinator{
		rec:       cfg.Recognizer,
		tracker:   cfg.Tracker,
		reporter:  cfg.Reporter,
		area:      cfg.WritingArea,
		maxCtx:    cfg.MaxPreContext,
		builder:   ink.NewBuilder(),
		assembler: ink.NewAssembler(),
	}
}

// StartStroke opens a new stroke at p.
func (c *Coordinator) StartStroke(p ink.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builder.Start(p)
	c.state = StateDrawing
}

// ContinueStroke appends a point to the open stroke.
func (c *Coordinator) ContinueStroke(p ink.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builder.Continue(p)
}

// EndStroke seals the open stroke and commits it to the assembler.
func (c *Coordinator) EndStroke(p ink.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.builder.End(p)
	if err != nil {
		return err
	}
	c.assembler.Add(s)
	c.state = StateReadyToRecognize
	return nil
}

// Recognize snapshots the buffered ink and dispatches it to the recognizer.
// Validation failures surface only as status messages and change no state.
func (c *Coordinator) Recognize(ctx context.Context) {
	c.mu.Lock()

	if c.assembler.Len() == 0 {
		c.mu.Unlock()
		c.report("No ink to recognize")
		return
	}
	if !c.tracker.Ready() {
		c.mu.Unlock()
		c.report("Recognizer model not downloaded")
		return
	}

	snapshot, err := c.assembler.Snapshot()
	if err != nil {
		// Unreachable after the length check; kept symmetric with the
		// assembler contract.
		c.mu.Unlock()
		c.report("No ink to recognize")
		return
	}

	ri := &RecognizedInk{ID: uuid.New().String(), Ink: snapshot}
	c.history = append(c.history, ri)
	c.state = StateRecognizing
	gen := c.generation
	rc := recognizer.Context{
		PreContext:  strings.Join(c.recentTexts, " "),
		WritingArea: c.area,
	}
	c.mu.Unlock()

	if c.reporter != nil {
		c.reporter.ClearTemporaryInk()
	}

	slog.Debug("dispatching recognition", "id", ri.ID, "strokes", len(snapshot.Strokes))
	go c.dispatch(ctx, ri, rc, gen)
}

// dispatch runs one recognition request and applies its single completion.
// It mutates only the captured RecognizedInk; after a Clear the write is
// inert and no message is reported.
func (c *Coordinator) dispatch(ctx context.Context, ri *RecognizedInk, rc recognizer.Context, gen uint64) {
	res, err := c.rec.Recognize(ctx, ri.Ink, rc)

	var msg, text string
	if err == nil {
		if top, ok := res.Top(); ok {
			text = top.Text
			msg = "Recognized: " + top.Text
			if top.Score != nil {
				msg += " score " + strconv.FormatFloat(*top.Score, 'g', -1, 64)
			}
		} else {
			err = fmt.Errorf("no candidates")
		}
	}
	if err != nil {
		text = errorSentinel
		msg = fmt.Sprintf("Recognition error %v", err)
	}

	c.mu.Lock()
	ri.Text = text
	ri.Done = true
	stale := gen != c.generation
	if !stale {
		if text != errorSentinel {
			c.recentTexts = append(c.recentTexts, text)
			if len(c.recentTexts) > c.maxCtx {
				c.recentTexts = c.recentTexts[1:]
			}
		}
		c.state = StateIdle
	}
	c.mu.Unlock()

	if stale {
		slog.Debug("discarding stale recognition result", "id", ri.ID)
		return
	}
	c.report(msg)
}

// Clear empties the stroke buffer, the assembler and the history. Model
// download state is untouched. Safe to call with a recognition in flight.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.builder.Reset()
	c.assembler.Reset()
	c.history = nil
	c.recentTexts = nil
	c.generation++
	c.state = StateIdle
	c.mu.Unlock()
}

// History returns a copy of the recognized-ink history in dispatch order.
func (c *Coordinator) History() []RecognizedInk {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RecognizedInk, len(c.history))
	for i, ri := range c.history {
		out[i] = *ri
	}
	return out
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PendingStrokes returns the number of sealed strokes awaiting recognition.
func (c *Coordinator) PendingStrokes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assembler.Len()
}

func (c *Coordinator) report(msg string) {
	if c.reporter != nil {
		c.reporter.DisplayStatusMessage(msg)
	}
}
