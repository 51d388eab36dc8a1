package detection

import "sort"

// Run is a horizontal span of foreground pixels [X1, X2] on row Y.
type Run struct {
	Y  int `json:"y"`
	X1 int `json:"x1"`
	X2 int `json:"x2"`
}

// Region is a maximal connected set of foreground pixels from one
// extraction run.
//
// Label is unique only within the run that produced it and must not be used
// as an identity across runs. Pixel membership is kept as row runs sorted by
// (Y, X1).
type Region struct {
	Label    int    `json:"label"`
	Area     int    `json:"area"`
	Centroid Point  `json:"centroid"`
	Bounds   Bounds `json:"bounds"`
	Runs     []Run  `json:"-"`
}

// Contains reports whether pixel (x, y) belongs to r.
func (r *Region) Contains(x, y int) bool {
	if x < r.Bounds.X1 || x > r.Bounds.X2 || y < r.Bounds.Y1 || y > r.Bounds.Y2 {
		return false
	}
	// First run on row y.
	i := sort.Search(len(r.Runs), func(i int) bool {
		return r.Runs[i].Y >= y
	})
	for ; i < len(r.Runs) && r.Runs[i].Y == y; i++ {
		if x >= r.Runs[i].X1 && x <= r.Runs[i].X2 {
			return true
		}
	}
	return false
}

type pixel struct {
	x, y int
}

// ExtractRegions finds connected foreground regions in m.
//
// The mask is scanned once in raster order; each unvisited foreground pixel
// seeds an iterative flood fill (explicit stack, no recursion) that labels
// its whole component and accumulates its area, centroid sums and bounds.
// A second raster pass over the label map emits the row runs, so the total
// work is linear in the number of pixels. Regions touching the image border
// are kept.
//
// Labels start at 1 and follow the raster position of each region's first
// pixel, which makes the output deterministic for a given mask.
func ExtractRegions(m *Mask, conn Connectivity) []Region {
	neighbours := neighbourOffsets(conn)
	labels := make([]int32, len(m.Bits))
	regions := make([]Region, 0)

	var stack []pixel

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			idx := y*m.Width + x
			if !m.Bits[idx] || labels[idx] != 0 {
				continue
			}

			label := int32(len(regions) + 1)
			r := Region{Label: int(label), Bounds: Bounds{X1: x, Y1: y, X2: x, Y2: y}}
			var sumX, sumY int

			stack = append(stack[:0], pixel{x, y})
			labels[idx] = label

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				r.Area++
				sumX += p.x
				sumY += p.y
				if p.x < r.Bounds.X1 {
					r.Bounds.X1 = p.x
				}
				if p.x > r.Bounds.X2 {
					r.Bounds.X2 = p.x
				}
				if p.y > r.Bounds.Y2 {
					r.Bounds.Y2 = p.y
				}

				for _, d := range neighbours {
					nx, ny := p.x+d.x, p.y+d.y
					if nx < 0 || nx >= m.Width || ny < 0 || ny >= m.Height {
						continue
					}
					nidx := ny*m.Width + nx
					if m.Bits[nidx] && labels[nidx] == 0 {
						labels[nidx] = label
						stack = append(stack, pixel{nx, ny})
					}
				}
			}

			r.Centroid = Point{X: float64(sumX) / float64(r.Area), Y: float64(sumY) / float64(r.Area)}
			regions = append(regions, r)
		}
	}

	// Runs come out sorted by (Y, X1) because the pass is in raster order.
	for y := 0; y < m.Height; y++ {
		row := labels[y*m.Width : (y+1)*m.Width]
		for x := 0; x < m.Width; {
			label := row[x]
			if label == 0 {
				x++
				continue
			}
			start := x
			for x < m.Width && row[x] == label {
				x++
			}
			r := &regions[label-1]
			r.Runs = append(r.Runs, Run{Y: y, X1: start, X2: x - 1})
		}
	}

	return regions
}

func neighbourOffsets(conn Connectivity) []pixel {
	if conn == Connectivity4 {
		return []pixel{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	}
	return []pixel{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
}
