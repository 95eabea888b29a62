package trace

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/thearijain/digitalink/ink"
)

func sampleTrace() *Trace {
	tr := New()
	tr.Record(PenDown, ink.Point{X: 10, Y: 10, T: 0})
	tr.Record(PenMove, ink.Point{X: 20, Y: 15, T: 40})
	tr.Record(PenUp, ink.Point{X: 30, Y: 20, T: 90})
	return tr
}

func TestTrace_SaveLoad(t *testing.T) {
	tr := sampleTrace()
	path := filepath.Join(t.TempDir(), "trace.json")

	if err := tr.Save(path); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if got.ID != tr.ID {
		t.Errorf("loaded ID = %q, want %q", got.ID, tr.ID)
	}
	if len(got.Events) != 3 {
		t.Fatalf("loaded %d events, want 3", len(got.Events))
	}
	if got.Events[0].Kind != PenDown || got.Events[2].Kind != PenUp {
		t.Errorf("event kinds = %v %v, want down/up at the ends", got.Events[0].Kind, got.Events[2].Kind)
	}
	if got.Events[1].Point != (ink.Point{X: 20, Y: 15, T: 40}) {
		t.Errorf("middle point = %+v, want the recorded point", got.Events[1].Point)
	}
}

func TestLoad_AssignsID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	tr := &Trace{Events: sampleTrace().Events}
	if err := tr.Save(path); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if got.ID == "" {
		t.Error("Load() left the ID empty")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load() = nil error for a missing file")
	}
}

func TestTrace_Duration(t *testing.T) {
	tr := sampleTrace()
	if got := tr.Duration().Milliseconds(); got != 90 {
		t.Errorf("Duration() = %dms, want 90", got)
	}
	if got := New().Duration(); got != 0 {
		t.Errorf("empty Duration() = %v, want 0", got)
	}
}

func TestTrace_Sorted(t *testing.T) {
	if !sampleTrace().Sorted() {
		t.Error("Sorted() = false for an in-order trace")
	}

	tr := New()
	tr.Record(PenDown, ink.Point{T: 100})
	tr.Record(PenUp, ink.Point{T: 50})
	if tr.Sorted() {
		t.Error("Sorted() = true for an out-of-order trace")
	}
}

func TestTrace_Replay(t *testing.T) {
	tr := sampleTrace()
	var kinds []EventKind
	err := tr.Replay(context.Background(), false, func(e Event) error {
		kinds = append(kinds, e.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("Replay() = %v", err)
	}

	want := []EventKind{PenDown, PenMove, PenUp}
	if len(kinds) != len(want) {
		t.Fatalf("replayed %d events, want %d", len(kinds), len(want))
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("event[%d] = %v, want %v", i, kinds[i], k)
		}
	}
}

func TestTrace_ReplayStopsOnError(t *testing.T) {
	tr := sampleTrace()
	boom := errors.New("boom")
	calls := 0
	err := tr.Replay(context.Background(), false, func(Event) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Replay() = %v, want wrapped callback error", err)
	}
	if calls != 2 {
		t.Errorf("callback calls = %d, want 2", calls)
	}
}

func TestTrace_ReplayCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sampleTrace().Replay(ctx, false, func(Event) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Replay() = %v, want context.Canceled", err)
	}
}
