package detection

// FilterBySize keeps regions with minArea <= Area <= maxArea. Regions outside
// the range are dropped, not reported separately. The input slice is not
// modified.
func FilterBySize(regions []Region, minArea, maxArea int) []Region {
	kept := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.Area >= minArea && r.Area <= maxArea {
			kept = append(kept, r)
		}
	}
	return kept
}
