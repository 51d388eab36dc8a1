package detection

import (
	"image"
	"sort"
)

// Detect runs the automatic colony pass on one image.
//
// The pipeline is:
//
//  1. Validate p. An invalid parameter set returns a *ConfigError before
//     any pixel is read.
//  2. Pre-process: optional Gaussian smoothing and reduction to one channel.
//  3. Binarize at p.Threshold.
//  4. Extract connected regions with p.Connectivity.
//  5. Keep regions with p.MinArea <= area <= p.MaxArea.
//
// Surviving regions become automatic, active colonies sorted by centroid
// (top to bottom, then left to right). IDs are left empty; identity is
// assigned by the reconciler.
//
// Detect keeps no state between calls and never modifies img, so it may be
// called repeatedly, or concurrently, on the same image with different
// parameters. Any image content yields a valid, possibly empty, set.
func Detect(img image.Image, p Params) (*ColonySet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return DetectGray(Prepare(img, p), p)
}

// DetectGray is Detect for an image already reduced to one channel. The
// smoothing and channel settings of p are ignored.
func DetectGray(g *Gray, p Params) (*ColonySet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.normalized()

	mask, err := Binarize(g, p.Threshold, p.DarkForeground)
	if err != nil {
		return nil, err
	}
	regions := FilterBySize(ExtractRegions(mask, p.Connectivity), p.MinArea, p.MaxArea)

	colonies := make([]Colony, 0, len(regions))
	for i := range regions {
		r := &regions[i]
		b := r.Bounds
		colonies = append(colonies, Colony{
			Origin: OriginAutomatic,
			Status: StatusActive,
			Center: r.Centroid,
			Area:   r.Area,
			Bounds: &b,
			Region: r,
		})
	}
	SortColonies(colonies)

	return &ColonySet{
		Width:    g.Width,
		Height:   g.Height,
		Colonies: colonies,
		Count:    len(colonies),
	}, nil
}

// DetectMask re-derives the binary mask Detect would threshold, for display.
// It does not apply the size filter.
func DetectMask(img image.Image, p Params) (*Mask, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.normalized()
	return Binarize(Prepare(img, p), p.Threshold, p.DarkForeground)
}

// SortColonies orders colonies by centroid row, then column. Ties keep their
// relative order.
func SortColonies(colonies []Colony) {
	sort.SliceStable(colonies, func(i, j int) bool {
		a, b := colonies[i].Center, colonies[j].Center
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}
