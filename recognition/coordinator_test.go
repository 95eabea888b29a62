package recognition

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thearijain/digitalink/ink"
	"github.com/thearijain/digitalink/model"
	"github.com/thearijain/digitalink/recognizer"
)

// readyManager satisfies model.Manager with every model pre-installed.
type readyManager struct{ events chan model.Event }

func (readyManager) Download(model.Model, model.Options) {}
func (readyManager) Downloaded(model.Model) bool         { return true }
func (m readyManager) Events() <-chan model.Event        { return m.events }

// emptyManager has no models and never completes a download.
type emptyManager struct{ events chan model.Event }

func (emptyManager) Download(model.Model, model.Options) {}
func (emptyManager) Downloaded(model.Model) bool         { return false }
func (m emptyManager) Events() <-chan model.Event        { return m.events }

// fakeReporter records status messages and clear calls.
type fakeReporter struct {
	mu     sync.Mutex
	msgs   []string
	clears int
}

func (r *fakeReporter) ClearTemporaryInk() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
}

func (r *fakeReporter) DisplayStatusMessage(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *fakeReporter) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func (r *fakeReporter) clearCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

func readyTracker(t *testing.T) *model.Tracker {
	t.Helper()
	tr := model.NewTracker(readyManager{events: make(chan model.Event)}, nil)
	tr.Select(model.MustParse(model.DefaultLanguageTag))
	if !tr.Ready() {
		t.Fatal("tracker not ready after selecting a pre-installed model")
	}
	return tr
}

func scored(text string, score float64) recognizer.Candidate {
	return recognizer.Candidate{Text: text, Score: &score}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func drawStroke(t *testing.T, c *Coordinator) {
	t.Helper()
	c.StartStroke(ink.Point{X: 10, Y: 10, T: 0})
	if err := c.ContinueStroke(ink.Point{X: 20, Y: 20, T: 50}); err != nil {
		t.Fatalf("ContinueStroke() = %v", err)
	}
	if err := c.EndStroke(ink.Point{X: 30, Y: 30, T: 100}); err != nil {
		t.Fatalf("EndStroke() = %v", err)
	}
}

func TestCoordinator_RecognizeSuccess(t *testing.T) {
	rep := &fakeReporter{}
	var gotCtx recognizer.Context
	rec := recognizer.Func(func(_ context.Context, k ink.Ink, rc recognizer.Context) (*recognizer.Result, error) {
		gotCtx = rc
		if len(k.Strokes) != 1 {
			t.Errorf("recognizer got %d strokes, want 1", len(k.Strokes))
		}
		return &recognizer.Result{Candidates: []recognizer.Candidate{scored("cat", 0.9)}}, nil
	})

	c := NewCoordinator(Config{
		Recognizer:  rec,
		Tracker:     readyTracker(t),
		Reporter:    rep,
		WritingArea: recognizer.WritingArea{Width: 1024, Height: 200},
	})

	drawStroke(t, c)
	if got := c.State(); got != StateReadyToRecognize {
		t.Errorf("State() = %v, want ready", got)
	}

	c.Recognize(context.Background())
	waitFor(t, func() bool {
		h := c.History()
		return len(h) == 1 && h[0].Done
	})

	h := c.History()
	if h[0].Text != "cat" {
		t.Errorf("history text = %q, want cat", h[0].Text)
	}
	if h[0].ID == "" {
		t.Error("recognized ink has no ID")
	}
	if got := c.State(); got != StateIdle {
		t.Errorf("State() = %v after completion, want idle", got)
	}
	if rep.clearCount() != 1 {
		t.Errorf("ClearTemporaryInk calls = %d, want 1", rep.clearCount())
	}
	if gotCtx.WritingArea.Width != 1024 || gotCtx.WritingArea.Height != 200 {
		t.Errorf("writing area = %+v, want 1024x200", gotCtx.WritingArea)
	}

	msgs := rep.messages()
	if len(msgs) != 1 || msgs[0] != "Recognized: cat score 0.9" {
		t.Errorf("messages = %v, want [Recognized: cat score 0.9]", msgs)
	}
}

func TestCoordinator_RecognizeNoScore(t *testing.T) {
	rep := &fakeReporter{}
	rec := recognizer.Func(func(context.Context, ink.Ink, recognizer.Context) (*recognizer.Result, error) {
		return &recognizer.Result{Candidates: []recognizer.Candidate{{Text: "hello"}}}, nil
	})
	c := NewCoordinator(Config{Recognizer: rec, Tracker: readyTracker(t), Reporter: rep})

	drawStroke(t, c)
	c.Recognize(context.Background())
	waitFor(t, func() bool { return len(rep.messages()) == 1 })

	if got := rep.messages()[0]; got != "Recognized: hello" {
		t.Errorf("message = %q, want score-free form", got)
	}
}

func TestCoordinator_RecognizeEmpty(t *testing.T) {
	rep := &fakeReporter{}
	calls := 0
	rec := recognizer.Func(func(context.Context, ink.Ink, recognizer.Context) (*recognizer.Result, error) {
		calls++
		return nil, nil
	})
	c := NewCoordinator(Config{Recognizer: rec, Tracker: readyTracker(t), Reporter: rep})

	c.Recognize(context.Background())

	if calls != 0 {
		t.Errorf("recognizer calls = %d, want 0", calls)
	}
	if len(c.History()) != 0 {
		t.Errorf("history = %v, want empty", c.History())
	}
	msgs := rep.messages()
	if len(msgs) != 1 || msgs[0] != "No ink to recognize" {
		t.Errorf("messages = %v, want [No ink to recognize]", msgs)
	}
	if rep.clearCount() != 0 {
		t.Errorf("ClearTemporaryInk calls = %d, want 0", rep.clearCount())
	}
}

func TestCoordinator_RecognizeModelNotReady(t *testing.T) {
	rep := &fakeReporter{}
	calls := 0
	rec := recognizer.Func(func(context.Context, ink.Ink, recognizer.Context) (*recognizer.Result, error) {
		calls++
		return nil, nil
	})
	tr := model.NewTracker(emptyManager{events: make(chan model.Event)}, nil)
	tr.Select(model.MustParse("en-US"))
	c := NewCoordinator(Config{Recognizer: rec, Tracker: tr, Reporter: rep})

	drawStroke(t, c)
	c.Recognize(context.Background())

	if calls != 0 {
		t.Errorf("recognizer calls = %d, want 0", calls)
	}
	if len(c.History()) != 0 {
		t.Errorf("history = %v, want empty", c.History())
	}
	msgs := rep.messages()
	if len(msgs) != 1 || msgs[0] != "Recognizer model not downloaded" {
		t.Errorf("messages = %v, want [Recognizer model not downloaded]", msgs)
	}
	// The ink survives the refusal and can be recognized once ready.
	if c.PendingStrokes() != 1 {
		t.Errorf("PendingStrokes() = %d, want 1", c.PendingStrokes())
	}
}

func TestCoordinator_RecognizeError(t *testing.T) {
	rep := &fakeReporter{}
	rec := recognizer.Func(func(context.Context, ink.Ink, recognizer.Context) (*recognizer.Result, error) {
		return nil, errors.New("backend unavailable")
	})
	c := NewCoordinator(Config{Recognizer: rec, Tracker: readyTracker(t), Reporter: rep})

	drawStroke(t, c)
	c.Recognize(context.Background())
	waitFor(t, func() bool {
		h := c.History()
		return len(h) == 1 && h[0].Done
	})

	h := c.History()
	if h[0].Text != "error" {
		t.Errorf("history text = %q, want error sentinel", h[0].Text)
	}
	msgs := rep.messages()
	if len(msgs) != 1 || msgs[0] != "Recognition error backend unavailable" {
		t.Errorf("messages = %v, want recognition error message", msgs)
	}
	if got := c.State(); got != StateIdle {
		t.Errorf("State() = %v after failed completion, want idle", got)
	}
}

func TestCoordinator_RecognizeNoCandidates(t *testing.T) {
	rep := &fakeReporter{}
	rec := recognizer.Func(func(context.Context, ink.Ink, recognizer.Context) (*recognizer.Result, error) {
		return &recognizer.Result{}, nil
	})
	c := NewCoordinator(Config{Recognizer: rec, Tracker: readyTracker(t), Reporter: rep})

	drawStroke(t, c)
	c.Recognize(context.Background())
	waitFor(t, func() bool {
		h := c.History()
		return len(h) == 1 && h[0].Done
	})

	if got := c.History()[0].Text; got != "error" {
		t.Errorf("history text = %q, want error sentinel", got)
	}
}

// TestCoordinator_RecognizeDrains verifies the buffer drains on dispatch, so a
// second immediate recognize has nothing to send.
func TestCoordinator_RecognizeDrains(t *testing.T) {
	rep := &fakeReporter{}
	calls := 0
	var mu sync.Mutex
	rec := recognizer.Func(func(context.Context, ink.Ink, recognizer.Context) (*recognizer.Result, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return &recognizer.Result{Candidates: []recognizer.Candidate{{Text: "once"}}}, nil
	})
	c := NewCoordinator(Config{Recognizer: rec, Tracker: readyTracker(t), Reporter: rep})

	drawStroke(t, c)
	c.Recognize(context.Background())
	c.Recognize(context.Background())

	waitFor(t, func() bool {
		h := c.History()
		return len(h) == 1 && h[0].Done
	})
	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("recognizer calls = %d, want 1", got)
	}

	found := false
	for _, msg := range rep.messages() {
		if msg == "No ink to recognize" {
			found = true
		}
	}
	if !found {
		t.Errorf("messages = %v, want a no-ink refusal for the second call", rep.messages())
	}
}

// TestCoordinator_ClearWithInFlight verifies a completion arriving after Clear
// resurrects nothing and reports nothing.
func TestCoordinator_ClearWithInFlight(t *testing.T) {
	rep := &fakeReporter{}
	release := make(chan struct{})
	rec := recognizer.Func(func(context.Context, ink.Ink, recognizer.Context) (*recognizer.Result, error) {
		<-release
		return &recognizer.Result{Candidates: []recognizer.Candidate{scored("ghost", 0.5)}}, nil
	})
	c := NewCoordinator(Config{Recognizer: rec, Tracker: readyTracker(t), Reporter: rep})

	drawStroke(t, c)
	c.Recognize(context.Background())
	if len(c.History()) != 1 {
		t.Fatalf("history = %d entries before clear, want 1", len(c.History()))
	}

	c.Clear()
	close(release)

	// Give the completion a moment to land.
	time.Sleep(50 * time.Millisecond)

	if len(c.History()) != 0 {
		t.Errorf("history = %v after clear, want empty", c.History())
	}
	if got := c.State(); got != StateIdle {
		t.Errorf("State() = %v, want idle", got)
	}
	for _, msg := range rep.messages() {
		if msg == "Recognized: ghost score 0.5" {
			t.Error("stale completion was reported")
		}
	}
}

func TestCoordinator_PreContext(t *testing.T) {
	rep := &fakeReporter{}
	var mu sync.Mutex
	var preContexts []string
	texts := []string{"the", "quick", "brown", "fox", "jumps"}
	i := 0
	rec := recognizer.Func(func(_ context.Context, _ ink.Ink, rc recognizer.Context) (*recognizer.Result, error) {
		mu.Lock()
		preContexts = append(preContexts, rc.PreContext)
		text := texts[i]
		i++
		mu.Unlock()
		return &recognizer.Result{Candidates: []recognizer.Candidate{{Text: text}}}, nil
	})
	c := NewCoordinator(Config{Recognizer: rec, Tracker: readyTracker(t), Reporter: rep, MaxPreContext: 3})

	for n := range texts {
		drawStroke(t, c)
		c.Recognize(context.Background())
		waitFor(t, func() bool {
			h := c.History()
			return len(h) == n+1 && h[n].Done
		})
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"", "the", "the quick", "the quick brown", "quick brown fox"}
	for n, w := range want {
		if preContexts[n] != w {
			t.Errorf("pre-context[%d] = %q, want %q", n, preContexts[n], w)
		}
	}
}

func TestCoordinator_StateTransitions(t *testing.T) {
	c := NewCoordinator(Config{
		Recognizer: recognizer.Func(func(context.Context, ink.Ink, recognizer.Context) (*recognizer.Result, error) {
			return &recognizer.Result{Candidates: []recognizer.Candidate{{Text: "x"}}}, nil
		}),
		Tracker: readyTracker(t),
	})

	if got := c.State(); got != StateIdle {
		t.Errorf("initial State() = %v, want idle", got)
	}
	c.StartStroke(ink.Point{})
	if got := c.State(); got != StateDrawing {
		t.Errorf("State() = %v after StartStroke, want drawing", got)
	}
	if err := c.EndStroke(ink.Point{X: 1, T: 10}); err != nil {
		t.Fatalf("EndStroke() = %v", err)
	}
	if got := c.State(); got != StateReadyToRecognize {
		t.Errorf("State() = %v after EndStroke, want ready", got)
	}
	c.Recognize(context.Background())
	waitFor(t, func() bool { return c.State() == StateIdle })
}
