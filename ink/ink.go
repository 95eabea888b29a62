// Package ink provides the stroke data model for handwritten input:
// timestamped points, sealed strokes, and the ink unit handed to a recognizer.
package ink

import "encoding/json"

// Point is a single touch sample. T is milliseconds since an arbitrary
// caller-defined origin (usually pen-down of the session).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T int64   `json:"t"`
}

// Stroke is an ordered sequence of points between pen-down and pen-up.
// A stroke obtained from Builder.End is sealed and must not be appended to.
type Stroke struct {
	Points []Point `json:"points"`
}

// Len returns the number of points in the stroke.
func (s Stroke) Len() int { return len(s.Points) }

// Ink is an ordered sequence of sealed strokes representing one recognition
// request. It is created by Assembler.Snapshot and never mutated afterwards.
type Ink struct {
	Strokes []Stroke `json:"strokes"`
}

// Empty reports whether the ink contains no strokes.
func (k Ink) Empty() bool { return len(k.Strokes) == 0 }

// PointCount returns the total number of points across all strokes.
func (k Ink) PointCount() int {
	n := 0
	for _, s := range k.Strokes {
		n += len(s.Points)
	}
	return n
}

// MarshalBinary encodes the ink as canonical JSON. Used for trace files and
// as the cache-digest input, so the encoding must stay stable.
func (k Ink) MarshalBinary() ([]byte, error) {
	return json.Marshal(k)
}
