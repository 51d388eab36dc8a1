package annotation

import (
	"math"
	"sort"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// DefaultTolerance is the distance in pixels within which an edit coordinate
// matches a colony centre, and within which two colonies from successive
// reconciliations are considered the same colony.
const DefaultTolerance = 8.0

// Reconciler merges automatic detections with a manual edit log.
type Reconciler struct {
	// Tolerance is the matching distance in pixels. Zero or negative means
	// DefaultTolerance.
	Tolerance float64
}

func (r Reconciler) tolerance() float64 {
	if r.Tolerance <= 0 {
		return DefaultTolerance
	}
	return r.Tolerance
}

// Reconcile returns the authoritative colony list for one image using
// DefaultTolerance and no previous output.
func Reconcile(set *detection.ColonySet, edits []Edit) []detection.Colony {
	return Reconciler{}.Reconcile(set, edits, nil)
}

// Reconcile replays edits against the automatic set and assigns identities.
//
// Every automatic colony starts active. Edits are then applied in sequence
// order:
//
//   - REMOVE suppresses the active automatic colony whose region contains
//     the coordinate; failing that, the active colony (automatic or manual)
//     whose centre is nearest within the tolerance. With no match the edit
//     is a no-op, so a log stays valid after the parameters change.
//   - A REMOVE carrying a TargetID only ever hits its own target: the
//     colony, active or not, that contains or lies nearest its coordinate.
//     If that colony is already removed the edit is a no-op.
//   - ADD places an active manual colony at the coordinate, unless an active
//     colony of either origin already contains it or lies within the
//     tolerance.
//
// The result holds every automatic and manual colony, removed ones included
// with StatusRemoved, sorted by centre. IDs are then assigned by matching
// against previous (the last output for the same image, or nil); see
// AssignIdentities.
//
// The result depends only on the arguments: neither set nor edits are
// modified, and the same inputs always give the same list.
func (r Reconciler) Reconcile(set *detection.ColonySet, edits []Edit, previous []detection.Colony) []detection.Colony {
	tol := r.tolerance()

	var auto []detection.Colony
	if set != nil {
		auto = make([]detection.Colony, len(set.Colonies))
		copy(auto, set.Colonies)
	}
	centres := make([]detection.Point, len(auto))
	for i := range auto {
		auto[i].ID = ""
		auto[i].Origin = detection.OriginAutomatic
		auto[i].Status = detection.StatusActive
		centres[i] = auto[i].Center
	}

	st := &replay{
		auto:  auto,
		index: newSpatialIndex(centres),
		tol:   tol,
	}
	for _, e := range ordered(edits) {
		switch e.Kind {
		case EditRemove:
			if e.TargetID != "" {
				st.removeTarget(e.Point)
			} else {
				st.remove(e.Point)
			}
		case EditAdd:
			st.add(e.Point)
		}
	}

	out := make([]detection.Colony, 0, len(st.auto)+len(st.manual))
	out = append(out, st.auto...)
	out = append(out, st.manual...)
	detection.SortColonies(out)

	return AssignIdentities(out, previous, tol)
}

// replay is the working state of one Reconcile call.
type replay struct {
	auto   []detection.Colony
	manual []detection.Colony
	index  *spatialIndex
	tol    float64
}

// containing returns the index of the active automatic colony whose region
// holds p, or -1. Regions are disjoint, so at most one matches.
func (st *replay) containing(p detection.Point) int {
	for i := range st.auto {
		if st.auto[i].Active() && st.auto[i].Contains(p) {
			return i
		}
	}
	return -1
}

// nearestAuto returns the nearest active automatic colony within tolerance.
func (st *replay) nearestAuto(p detection.Point) (int, float64) {
	for _, i := range st.index.within(p, st.tol) {
		if st.auto[i].Active() {
			return i, st.auto[i].Center.Distance(p)
		}
	}
	return -1, math.Inf(1)
}

func (st *replay) remove(p detection.Point) {
	if i := st.containing(p); i >= 0 {
		st.auto[i].Status = detection.StatusRemoved
		return
	}

	ai, best := st.nearestAuto(p)
	mi := -1
	for j := range st.manual {
		if !st.manual[j].Active() {
			continue
		}
		// Automatic colonies win ties.
		if d := st.manual[j].Center.Distance(p); d <= st.tol && d < best {
			mi, best = j, d
		}
	}

	switch {
	case mi >= 0:
		st.manual[mi].Status = detection.StatusRemoved
	case ai >= 0:
		st.auto[ai].Status = detection.StatusRemoved
	}
}

// removeTarget suppresses the colony a by-id REMOVE was aimed at. Removed
// colonies stay candidates, so the edit never slides onto a neighbour.
func (st *replay) removeTarget(p detection.Point) {
	for i := range st.auto {
		if st.auto[i].Contains(p) {
			st.auto[i].Status = detection.StatusRemoved
			return
		}
	}

	target, best := (*detection.Colony)(nil), math.Inf(1)
	if ids := st.index.within(p, st.tol); len(ids) > 0 {
		target, best = &st.auto[ids[0]], st.auto[ids[0]].Center.Distance(p)
	}
	for j := range st.manual {
		if d := st.manual[j].Center.Distance(p); d <= st.tol && d < best {
			target, best = &st.manual[j], d
		}
	}
	if target != nil {
		target.Status = detection.StatusRemoved
	}
}

func (st *replay) add(p detection.Point) {
	if st.containing(p) >= 0 {
		return
	}
	if i, _ := st.nearestAuto(p); i >= 0 {
		return
	}
	for j := range st.manual {
		if st.manual[j].Active() && st.manual[j].Center.Distance(p) <= st.tol {
			return
		}
	}
	st.manual = append(st.manual, detection.Colony{
		Origin: detection.OriginManual,
		Status: detection.StatusActive,
		Center: p,
	})
}

// ordered returns edits sorted by sequence number without touching the
// caller's slice.
func ordered(edits []Edit) []Edit {
	out := make([]Edit, len(edits))
	copy(out, edits)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Seq < out[j].Seq
	})
	return out
}
