package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// LabeledPoint is a pixel coordinate with an optional label such as
// "colony" or "agar".
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// IntensitySample describes one pixel as the detection pass sees it.
type IntensitySample struct {
	Label string `json:"label,omitempty"`
	X     int    `json:"x"`
	Y     int    `json:"y"`

	// Hex is the source colour "#RRGGBB".
	Hex string `json:"hex"`

	// Lightness is CIE L* in 0-100, independent of the selected channel.
	Lightness float64 `json:"lightness"`

	// Intensity is the value compared with the threshold after channel
	// reduction. Smoothing is not applied to single samples.
	Intensity int `json:"intensity"`

	// Foreground reports whether the pixel passes the threshold with the
	// given polarity.
	Foreground bool `json:"foreground"`
}

// SampleResult is the answer to SampleIntensity.
type SampleResult struct {
	Channel   detection.Channel `json:"channel"`
	Threshold int               `json:"threshold"`
	Samples   []IntensitySample `json:"samples"`

	// SuggestedThreshold is the midpoint between the mean intensity of
	// points labelled "colony" and those labelled "agar", or -1 when either
	// group is empty.
	SuggestedThreshold int `json:"suggested_threshold"`
}

// SampleIntensity reports the reduced intensity at each point, so a user can
// pick a threshold by probing a colony and the surrounding agar.
//
// Coordinates are relative to the image origin. Any point outside the image
// fails the whole call.
func SampleIntensity(img image.Image, points []LabeledPoint, p detection.Params) (*SampleResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ch, _ := detection.ParseChannel(string(p.Channel))

	bounds := img.Bounds()
	res := &SampleResult{Channel: ch, Threshold: p.Threshold, SuggestedThreshold: -1}
	var colonySum, agarSum float64
	var colonyN, agarN int

	for _, pt := range points {
		x, y := pt.X+bounds.Min.X, pt.Y+bounds.Min.Y
		if !image.Pt(x, y).In(bounds) {
			return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", pt.X, pt.Y)
		}
		c := img.At(x, y)
		v := int(detection.Intensity(c, ch))

		s := IntensitySample{Label: pt.Label, X: pt.X, Y: pt.Y, Intensity: v}
		if cf, ok := colorful.MakeColor(c); ok {
			s.Hex = cf.Clamped().Hex()
			l, _, _ := cf.Lab()
			s.Lightness = math.Round(l*1000) / 10
		} else {
			s.Hex = "#000000"
		}
		if p.DarkForeground {
			s.Foreground = v <= p.Threshold
		} else {
			s.Foreground = v >= p.Threshold
		}
		res.Samples = append(res.Samples, s)

		switch pt.Label {
		case "colony":
			colonySum += float64(v)
			colonyN++
		case "agar", "background":
			agarSum += float64(v)
			agarN++
		}
	}

	if colonyN > 0 && agarN > 0 {
		mid := (colonySum/float64(colonyN) + agarSum/float64(agarN)) / 2
		res.SuggestedThreshold = int(math.Round(mid))
	}
	return res, nil
}
