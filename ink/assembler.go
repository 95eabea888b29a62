package ink

import "errors"

// ErrNoStrokes is returned by Snapshot when no strokes have been committed
// since the last snapshot or reset.
var ErrNoStrokes = errors.New("no strokes to assemble")

// Assembler holds the sealed strokes accumulated since the last recognize or
// clear boundary.
type Assembler struct {
	strokes []Stroke
}

// NewAssembler creates an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Add commits a sealed stroke.
func (a *Assembler) Add(s Stroke) {
	a.strokes = append(a.strokes, s)
}

// Len returns the number of committed strokes.
func (a *Assembler) Len() int { return len(a.strokes) }

// Snapshot returns the committed strokes as an immutable Ink and empties the
// internal list. Returns ErrNoStrokes when nothing has been committed.
func (a *Assembler) Snapshot() (Ink, error) {
	if len(a.strokes) == 0 {
		return Ink{}, ErrNoStrokes
	}
	out := Ink{Strokes: a.strokes}
	a.strokes = nil
	return out, nil
}

// Reset discards all committed strokes.
func (a *Assembler) Reset() {
	a.strokes = nil
}
