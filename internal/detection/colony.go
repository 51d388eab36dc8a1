package detection

import (
	"image"
	"math"
)

// Point is a sub-pixel coordinate. Pixel (x, y) has its centre at (x, y).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Bounds is an inclusive pixel bounding box.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (inclusive)
	Y2 int `json:"y2"` // Bottom edge (inclusive)
}

// Rect converts b to a half-open image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2+1, b.Y2+1)
}

// Origin tags where a colony came from.
type Origin string

const (
	OriginAutomatic Origin = "automatic"
	OriginManual    Origin = "manual"
)

// Status tells whether a colony counts toward the total.
type Status string

const (
	StatusActive  Status = "active"
	StatusRemoved Status = "removed"
)

// Colony is one counted object: a detected region or a manually placed point.
type Colony struct {
	// ID is stable across recomputation. Detect leaves it empty; the
	// reconciler assigns it by spatial matching.
	ID string `json:"id"`

	Origin Origin `json:"origin"`
	Status Status `json:"status"`

	// Center is the region centroid, or the placed coordinate for manual
	// colonies.
	Center Point `json:"center"`

	// Area is the pixel count. Manual colonies have no computed area.
	Area int `json:"area,omitempty"`

	// Bounds is the region bounding box. Nil for manual colonies.
	Bounds *Bounds `json:"bounds,omitempty"`

	// Region backs an automatic colony and answers containment queries.
	Region *Region `json:"-"`
}

// Active reports whether c counts toward the total.
func (c Colony) Active() bool {
	return c.Status == StatusActive
}

// Contains reports whether the pixel under p belongs to c's region. Manual
// colonies have no region and never contain a point.
func (c Colony) Contains(p Point) bool {
	if c.Region == nil {
		return false
	}
	return c.Region.Contains(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// ColonySet is the automatic output of one detection run.
type ColonySet struct {
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Colonies []Colony `json:"colonies"`
	Count    int      `json:"count"`
}

// InBounds reports whether p lies on a pixel of an image of the given size.
func InBounds(p Point, width, height int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < float64(width) && p.Y < float64(height)
}
