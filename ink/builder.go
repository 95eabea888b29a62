package ink

import "errors"

// ErrNoOpenStroke is returned when Continue or End is called without a
// preceding Start.
var ErrNoOpenStroke = errors.New("no open stroke")

// Builder accumulates points for one in-progress stroke. It is purely
// functional over its own state; callers serialize access (the coordinator
// guarantees event ordering).
type Builder struct {
	points []Point
	open   bool
}

// NewBuilder creates an empty stroke builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Start opens a new stroke beginning at p. Any previous open-stroke state is
// discarded; an unterminated stroke is treated as a defensive reset, not an
// error.
func (b *Builder) Start(p Point) {
	b.points = b.points[:0]
	b.points = append(b.points, p)
	b.open = true
}

// Continue appends a point to the open stroke.
func (b *Builder) Continue(p Point) error {
	if !b.open {
		return ErrNoOpenStroke
	}
	b.points = append(b.points, p)
	return nil
}

// End appends the final point, seals the stroke and resets the builder.
// The sealed stroke always has at least one point.
func (b *Builder) End(p Point) (Stroke, error) {
	if !b.open {
		return Stroke{}, ErrNoOpenStroke
	}
	b.points = append(b.points, p)
	sealed := Stroke{Points: make([]Point, len(b.points))}
	copy(sealed.Points, b.points)
	b.Reset()
	return sealed, nil
}

// Open reports whether a stroke is currently in progress.
func (b *Builder) Open() bool { return b.open }

// Len returns the number of points accumulated for the open stroke.
func (b *Builder) Len() int { return len(b.points) }

// Reset discards the working set.
func (b *Builder) Reset() {
	b.points = b.points[:0]
	b.open = false
}
