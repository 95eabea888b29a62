package ink

import (
	"errors"
	"testing"
)

func stroke(points ...Point) Stroke {
	return Stroke{Points: points}
}

func TestAssembler_Snapshot(t *testing.T) {
	a := NewAssembler()
	a.Add(stroke(pt(1, 1, 0), pt(2, 2, 10)))
	a.Add(stroke(pt(3, 3, 20)))

	k, err := a.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() = %v", err)
	}
	if len(k.Strokes) != 2 {
		t.Errorf("ink has %d strokes, want 2", len(k.Strokes))
	}
	if k.PointCount() != 3 {
		t.Errorf("ink has %d points, want 3", k.PointCount())
	}

	// Snapshot drains the assembler.
	if a.Len() != 0 {
		t.Errorf("assembler holds %d strokes after snapshot, want 0", a.Len())
	}
	if _, err := a.Snapshot(); !errors.Is(err, ErrNoStrokes) {
		t.Errorf("second Snapshot() = %v, want ErrNoStrokes", err)
	}
}

func TestAssembler_SnapshotEmpty(t *testing.T) {
	a := NewAssembler()
	if _, err := a.Snapshot(); !errors.Is(err, ErrNoStrokes) {
		t.Errorf("Snapshot() on empty = %v, want ErrNoStrokes", err)
	}
}

func TestAssembler_Reset(t *testing.T) {
	a := NewAssembler()
	a.Add(stroke(pt(1, 1, 0)))
	a.Reset()

	if a.Len() != 0 {
		t.Errorf("assembler holds %d strokes after reset, want 0", a.Len())
	}
	if _, err := a.Snapshot(); !errors.Is(err, ErrNoStrokes) {
		t.Errorf("Snapshot() after reset = %v, want ErrNoStrokes", err)
	}
}

// TestAssembler_SnapshotIsolated verifies strokes added after a snapshot do
// not leak into the earlier ink.
func TestAssembler_SnapshotIsolated(t *testing.T) {
	a := NewAssembler()
	a.Add(stroke(pt(1, 1, 0)))

	k, err := a.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() = %v", err)
	}

	a.Add(stroke(pt(2, 2, 10)))
	a.Add(stroke(pt(3, 3, 20)))

	if len(k.Strokes) != 1 {
		t.Errorf("earlier ink has %d strokes, want 1", len(k.Strokes))
	}
}
