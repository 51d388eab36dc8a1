package annotation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// idPrefix starts every colony id.
const idPrefix = "c"

type candidate struct {
	cur, prev int
	dist      float64
	mismatch  bool
}

// AssignIdentities gives each colony in current an id by spatial matching
// against previous, the last reconciled output for the same image.
//
// Every pair (current, previous) whose centres lie within tol is a
// candidate. Candidates are accepted one-to-one, preferring pairs with the
// same origin, then the shortest distance, then the lower indices. A matched
// colony inherits the previous id. Unmatched colonies receive fresh ids
// numbered above the largest previous id, in list order.
//
// Region labels are never used: they change whenever detection is re-run.
// current is not modified.
func AssignIdentities(current, previous []detection.Colony, tol float64) []detection.Colony {
	out := make([]detection.Colony, len(current))
	copy(out, current)
	for i := range out {
		out[i].ID = ""
	}

	next := 1
	centres := make([]detection.Point, len(previous))
	for j, p := range previous {
		centres[j] = p.Center
		if n, ok := parseID(p.ID); ok && n >= next {
			next = n + 1
		}
	}

	index := newSpatialIndex(centres)
	var cands []candidate
	for i, c := range out {
		for _, j := range index.within(c.Center, tol) {
			if previous[j].ID == "" {
				continue
			}
			cands = append(cands, candidate{
				cur:      i,
				prev:     j,
				dist:     c.Center.Distance(previous[j].Center),
				mismatch: c.Origin != previous[j].Origin,
			})
		}
	}
	sort.Slice(cands, func(a, b int) bool {
		ca, cb := cands[a], cands[b]
		if ca.mismatch != cb.mismatch {
			return !ca.mismatch
		}
		if ca.dist != cb.dist {
			return ca.dist < cb.dist
		}
		if ca.cur != cb.cur {
			return ca.cur < cb.cur
		}
		return ca.prev < cb.prev
	})

	usedPrev := make([]bool, len(previous))
	for _, c := range cands {
		if out[c.cur].ID != "" || usedPrev[c.prev] {
			continue
		}
		out[c.cur].ID = previous[c.prev].ID
		usedPrev[c.prev] = true
	}

	for i := range out {
		if out[i].ID == "" {
			out[i].ID = fmt.Sprintf("%s%d", idPrefix, next)
			next++
		}
	}
	return out
}

func parseID(id string) (int, bool) {
	if !strings.HasPrefix(id, idPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, idPrefix))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Find returns the colony with the given id.
func Find(colonies []detection.Colony, id string) (detection.Colony, bool) {
	for _, c := range colonies {
		if c.ID == id {
			return c, true
		}
	}
	return detection.Colony{}, false
}
