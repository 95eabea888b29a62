// Package recognizer provides the handwriting recognizer interface and its
// implementations.
package recognizer

import (
	"context"

	"github.com/thearijain/digitalink/ink"
)

// WritingArea is the size of the surface the ink was written on, in
// caller-defined units.
type WritingArea struct {
	Width  float64
	Height float64
}

// Context carries per-request recognition hints.
type Context struct {
	// PreContext is text preceding the ink, used to bias recognition.
	PreContext string
	// WritingArea is the drawing surface size.
	WritingArea WritingArea
}

// Candidate is one ranked transcription hypothesis. Score is nil when the
// backend does not report one.
type Candidate struct {
	Text  string   `json:"text"`
	Score *float64 `json:"score,omitempty"`
}

// Result is a ranked list of candidates, best first.
type Result struct {
	Candidates []Candidate `json:"candidates"`
}

// Top returns the best candidate and whether one exists.
func (r *Result) Top() (Candidate, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// Recognizer converts ink to text. Implementations must be safe for
// concurrent use; each call resolves exactly once.
type Recognizer interface {
	Recognize(ctx context.Context, k ink.Ink, rc Context) (*Result, error)
}

// Func adapts a function to the Recognizer interface.
type Func func(ctx context.Context, k ink.Ink, rc Context) (*Result, error)

// Recognize implements Recognizer.
func (f Func) Recognize(ctx context.Context, k ink.Ink, rc Context) (*Result, error) {
	return f(ctx, k, rc)
}
