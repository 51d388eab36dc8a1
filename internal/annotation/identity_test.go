package annotation

import (
	"testing"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

func colonyAt(id string, origin detection.Origin, x, y float64) detection.Colony {
	return detection.Colony{ID: id, Origin: origin, Status: detection.StatusActive, Center: pt(x, y)}
}

func TestAssignIdentities_Fresh(t *testing.T) {
	cur := []detection.Colony{
		colonyAt("", detection.OriginAutomatic, 1, 1),
		colonyAt("", detection.OriginAutomatic, 9, 1),
		colonyAt("", detection.OriginManual, 5, 9),
	}
	got := AssignIdentities(cur, nil, DefaultTolerance)

	want := []string{"c1", "c2", "c3"}
	for i, c := range got {
		if c.ID != want[i] {
			t.Errorf("colony %d: got id %q, want %q", i, c.ID, want[i])
		}
	}
	if cur[0].ID != "" {
		t.Errorf("input was modified")
	}
}

func TestAssignIdentities_FollowsShiftedCentroids(t *testing.T) {
	prev := []detection.Colony{
		colonyAt("c1", detection.OriginAutomatic, 10, 10),
		colonyAt("c2", detection.OriginAutomatic, 50, 10),
		colonyAt("c7", detection.OriginManual, 30, 60),
	}
	// Re-detection with a new threshold grows each region a little.
	cur := []detection.Colony{
		colonyAt("", detection.OriginAutomatic, 11.5, 10.5),
		colonyAt("", detection.OriginAutomatic, 48, 11),
		colonyAt("", detection.OriginManual, 30, 60),
		colonyAt("", detection.OriginAutomatic, 80, 80),
	}

	got := AssignIdentities(cur, prev, DefaultTolerance)
	want := []string{"c1", "c2", "c7", "c8"}
	for i, c := range got {
		if c.ID != want[i] {
			t.Errorf("colony at %+v: got id %q, want %q", c.Center, c.ID, want[i])
		}
	}
}

func TestAssignIdentities_OneToOne(t *testing.T) {
	prev := []detection.Colony{colonyAt("c1", detection.OriginAutomatic, 10, 10)}
	cur := []detection.Colony{
		colonyAt("", detection.OriginAutomatic, 13, 10),
		colonyAt("", detection.OriginAutomatic, 11, 10),
	}

	got := AssignIdentities(cur, prev, DefaultTolerance)
	if got[1].ID != "c1" {
		t.Errorf("nearest colony should inherit c1, got %q", got[1].ID)
	}
	if got[0].ID != "c2" {
		t.Errorf("other colony should get a fresh id, got %q", got[0].ID)
	}
}

func TestAssignIdentities_PrefersSameOrigin(t *testing.T) {
	prev := []detection.Colony{
		colonyAt("c1", detection.OriginAutomatic, 10, 10),
		colonyAt("c2", detection.OriginManual, 12, 10),
	}
	cur := []detection.Colony{
		colonyAt("", detection.OriginManual, 10, 10),
		colonyAt("", detection.OriginAutomatic, 12, 10),
	}

	got := AssignIdentities(cur, prev, DefaultTolerance)
	if got[0].ID != "c2" || got[1].ID != "c1" {
		t.Errorf("ids: got %q,%q, want c2,c1", got[0].ID, got[1].ID)
	}
}

func TestReconciler_StableIDsAcrossEdits(t *testing.T) {
	set := detectBlocks(t, 100, 100, block{10, 10, 14, 14}, block{40, 40, 44, 44}, block{70, 70, 74, 74})
	r := Reconciler{}
	l := NewLog(100, 100)

	first := r.Reconcile(set, l.Edits(), nil)
	ids := map[detection.Point]string{}
	for _, c := range first {
		ids[c.Center] = c.ID
	}

	l.Remove(pt(42, 42))
	l.Add(pt(20, 80))
	second := r.Reconcile(set, l.Edits(), first)

	for _, c := range second {
		if c.Origin != detection.OriginAutomatic {
			continue
		}
		if c.ID != ids[c.Center] {
			t.Errorf("colony at %+v: id changed from %q to %q", c.Center, ids[c.Center], c.ID)
		}
	}
	if c, ok := Find(second, "c4"); !ok || c.Origin != detection.OriginManual {
		t.Errorf("new manual colony should be c4, got %+v (found=%v)", c, ok)
	}
}
