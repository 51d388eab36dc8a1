package annotation

import (
	"fmt"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// EditKind is the type of a manual edit.
type EditKind string

const (
	// EditAdd places a manual colony at a coordinate.
	EditAdd EditKind = "add"
	// EditRemove suppresses the colony at or near a coordinate.
	EditRemove EditKind = "remove"
)

// Edit is one manual correction.
type Edit struct {
	// Seq is the insertion order within the log, starting at 1.
	Seq int `json:"seq"`

	Kind  EditKind        `json:"kind"`
	Point detection.Point `json:"point"`

	// TargetID records the colony the user clicked when removing by id.
	// Matching is still done by Point, because ids do not survive every
	// recomputation.
	TargetID string `json:"target_id,omitempty"`
}

// BoundsError reports an edit coordinate outside the image.
type BoundsError struct {
	Point         detection.Point
	Width, Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("coordinate (%.1f,%.1f) outside image bounds %dx%d", e.Point.X, e.Point.Y, e.Width, e.Height)
}

// Log is the append-only manual edit log for one image.
//
// Edits are validated against the image dimensions when they are appended;
// an out-of-range coordinate is rejected, never clipped. The log never
// changes except through Append (and its helpers) and Clear.
//
// A Log is not safe for concurrent use. Reconcile receives a copy of the
// edits, never the Log itself.
type Log struct {
	width  int
	height int
	edits  []Edit
	seq    int
}

// NewLog creates an empty log for an image of the given size.
func NewLog(width, height int) *Log {
	return &Log{width: width, height: height}
}

// Add appends an ADD edit at p.
func (l *Log) Add(p detection.Point) (Edit, error) {
	return l.Append(Edit{Kind: EditAdd, Point: p})
}

// Remove appends a REMOVE edit at p.
func (l *Log) Remove(p detection.Point) (Edit, error) {
	return l.Append(Edit{Kind: EditRemove, Point: p})
}

// RemoveColony appends a REMOVE edit aimed at c's centre and tagged with its
// id.
func (l *Log) RemoveColony(c detection.Colony) (Edit, error) {
	return l.Append(Edit{Kind: EditRemove, Point: c.Center, TargetID: c.ID})
}

// Append validates e, stamps its sequence number and appends it. The stored
// edit is returned.
func (l *Log) Append(e Edit) (Edit, error) {
	switch e.Kind {
	case EditAdd, EditRemove:
	default:
		return Edit{}, fmt.Errorf("unknown edit kind %q", e.Kind)
	}
	if !detection.InBounds(e.Point, l.width, l.height) {
		return Edit{}, &BoundsError{Point: e.Point, Width: l.width, Height: l.height}
	}

	l.seq++
	e.Seq = l.seq
	l.edits = append(l.edits, e)
	return e, nil
}

// Edits returns a copy of the edits in insertion order.
func (l *Log) Edits() []Edit {
	out := make([]Edit, len(l.edits))
	copy(out, l.edits)
	return out
}

// Len returns the number of edits.
func (l *Log) Len() int {
	return len(l.edits)
}

// Clear drops every edit. Sequence numbers keep increasing afterwards.
func (l *Log) Clear() {
	l.edits = nil
}

// Clone returns an independent copy of l.
func (l *Log) Clone() *Log {
	return &Log{width: l.width, height: l.height, edits: l.Edits(), seq: l.seq}
}
