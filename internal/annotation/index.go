package annotation

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// spatialIndex answers "which points lie within r of q" over a fixed set of
// colony centres.
//
// Points are stored once per distinct coordinate in a k-d tree; slots maps a
// coordinate back to every input index sharing it.
type spatialIndex struct {
	tree  *kdtree.Tree
	slots map[[2]float64][]int
	pts   []detection.Point
}

func newSpatialIndex(pts []detection.Point) *spatialIndex {
	idx := &spatialIndex{
		slots: make(map[[2]float64][]int, len(pts)),
		pts:   pts,
	}
	if len(pts) == 0 {
		return idx
	}

	kp := make(kdtree.Points, 0, len(pts))
	for i, p := range pts {
		key := [2]float64{p.X, p.Y}
		if _, seen := idx.slots[key]; !seen {
			kp = append(kp, kdtree.Point{p.X, p.Y})
		}
		idx.slots[key] = append(idx.slots[key], i)
	}
	idx.tree = kdtree.New(kp, false)
	return idx
}

// within returns the indices of points no farther than r from q, nearest
// first. Equal distances are ordered by index.
func (s *spatialIndex) within(q detection.Point, r float64) []int {
	if s.tree == nil || r < 0 {
		return nil
	}

	// kdtree distances are squared; pad slightly so boundary points are not
	// lost to rounding, then filter exactly below.
	keep := kdtree.NewDistKeeper(r*r*(1+1e-9) + 1e-12)
	s.tree.NearestSet(keep, kdtree.Point{q.X, q.Y})

	out := make([]int, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		p, ok := cd.Comparable.(kdtree.Point)
		if !ok {
			continue
		}
		for _, i := range s.slots[[2]float64{p[0], p[1]}] {
			if s.pts[i].Distance(q) <= r {
				out = append(out, i)
			}
		}
	}

	sort.Slice(out, func(a, b int) bool {
		da, db := s.pts[out[a]].Distance(q), s.pts[out[b]].Distance(q)
		if da != db {
			return da < db
		}
		return out[a] < out[b]
	})
	return out
}
