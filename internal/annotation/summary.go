package annotation

import "github.com/ironsheep/colony-counter-mcp/internal/detection"

// Summary tallies a reconciled colony list.
type Summary struct {
	// Count is the number of active colonies, the figure reported per image.
	Count int `json:"count"`

	// AutoCount is the number of automatic detections before edits.
	AutoCount int `json:"auto_count"`

	// ManualAdded is the number of active manual colonies.
	ManualAdded int `json:"manual_added"`

	// ManualRemoved is the number of automatic colonies suppressed by edits.
	ManualRemoved int `json:"manual_removed"`
}

// Summarize counts colonies by origin and status.
// Count always equals AutoCount - ManualRemoved + ManualAdded.
func Summarize(colonies []detection.Colony) Summary {
	var s Summary
	for _, c := range colonies {
		switch c.Origin {
		case detection.OriginAutomatic:
			s.AutoCount++
			if !c.Active() {
				s.ManualRemoved++
			}
		case detection.OriginManual:
			if c.Active() {
				s.ManualAdded++
			}
		}
		if c.Active() {
			s.Count++
		}
	}
	return s
}

// Active returns the active colonies of list, in order.
func Active(colonies []detection.Colony) []detection.Colony {
	out := make([]detection.Colony, 0, len(colonies))
	for _, c := range colonies {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out
}
