// Package trace records and replays ink sessions: ordered pen events with
// timestamps, serialized as JSON. Traces drive the coordinator from the CLI
// and from tests without a live input device.
package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/thearijain/digitalink/ink"
)

// EventKind is the pen action of a trace event.
type EventKind string

const (
	PenDown EventKind = "down"
	PenMove EventKind = "move"
	PenUp   EventKind = "up"
)

// Event is one recorded pen action.
type Event struct {
	Kind  EventKind `json:"kind"`
	Point ink.Point `json:"point"`
}

// Trace is a recorded ink session.
type Trace struct {
	ID     string  `json:"id"`
	Events []Event `json:"events"`
}

// New creates an empty trace with a fresh ID.
func New() *Trace {
	return &Trace{ID: uuid.New().String()}
}

// Record appends a pen event.
func (t *Trace) Record(kind EventKind, p ink.Point) {
	t.Events = append(t.Events, Event{Kind: kind, Point: p})
}

// Load reads a trace from a JSON file.
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	var tr Trace
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("unmarshal trace: %w", err)
	}
	if tr.ID == "" {
		tr.ID = uuid.New().String()
	}
	return &tr, nil
}

// Save writes the trace as indented JSON.
func (t *Trace) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// Duration returns the span between the first and last event timestamps.
func (t *Trace) Duration() time.Duration {
	if len(t.Events) == 0 {
		return 0
	}
	first := t.Events[0].Point.T
	last := t.Events[len(t.Events)-1].Point.T
	return time.Duration(last-first) * time.Millisecond
}

// Sorted reports whether event timestamps are non-decreasing.
func (t *Trace) Sorted() bool {
	return sort.SliceIsSorted(t.Events, func(i, j int) bool {
		return t.Events[i].Point.T < t.Events[j].Point.T
	})
}

// Replay delivers events to cb in order. When realtime is true the recorded
// inter-event delays are honored; otherwise events are delivered back to
// back. Replay stops early when ctx is done or cb returns an error.
func (t *Trace) Replay(ctx context.Context, realtime bool, cb func(Event) error) error {
	var prev int64
	for i, e := range t.Events {
		if realtime && i > 0 {
			delay := time.Duration(e.Point.T-prev) * time.Millisecond
			if delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}
		}
		prev = e.Point.T

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cb(e); err != nil {
			return fmt.Errorf("replay event %d: %w", i, err)
		}
	}
	return nil
}
