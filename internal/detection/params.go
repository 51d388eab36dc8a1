package detection

import (
	"fmt"
	"strings"
)

// MaxIntensity is the largest sample value of a Gray image.
const MaxIntensity = 255

// Connectivity selects which neighbours join two foreground pixels into the
// same region.
type Connectivity int

const (
	// Connectivity8 joins edge and corner neighbours (the default).
	Connectivity8 Connectivity = 8
	// Connectivity4 joins edge neighbours only.
	Connectivity4 Connectivity = 4
)

// Channel selects how a colour image is reduced to one intensity channel.
type Channel string

const (
	// ChannelLuminance uses ITU-R BT.601 luma (0.299R + 0.587G + 0.114B).
	ChannelLuminance Channel = "luminance"
	// ChannelRed uses the red component only.
	ChannelRed Channel = "red"
	// ChannelGreen uses the green component only.
	ChannelGreen Channel = "green"
	// ChannelBlue uses the blue component only.
	ChannelBlue Channel = "blue"
	// ChannelLightness uses CIE L* scaled to 0-255.
	ChannelLightness Channel = "lightness"
)

// Params is the tunable configuration for one detection call.
//
// A Params value is immutable from the pipeline's point of view: Detect
// never modifies it and keeps no reference to it after returning.
type Params struct {
	// Threshold is the intensity cutoff (0-255). Pixels at or above it are
	// foreground, or at or below it when DarkForeground is set.
	Threshold int `json:"threshold"`

	// MinArea and MaxArea bound region area in pixels, inclusive.
	MinArea int `json:"min_area"`
	MaxArea int `json:"max_area"`

	// SmoothingRadius is the Gaussian blur radius applied before
	// binarization. Zero disables smoothing.
	SmoothingRadius float64 `json:"smoothing_radius,omitempty"`

	// Connectivity is 4 or 8. Zero means 8.
	Connectivity Connectivity `json:"connectivity,omitempty"`

	// Channel is the colour reduction. Empty means luminance.
	Channel Channel `json:"channel,omitempty"`

	// DarkForeground flips the polarity for dark colonies on light agar.
	DarkForeground bool `json:"dark_foreground,omitempty"`
}

// DefaultParams returns the parameter set used when a caller supplies none.
func DefaultParams() Params {
	return Params{
		Threshold:    128,
		MinArea:      10,
		MaxArea:      10000,
		Connectivity: Connectivity8,
		Channel:      ChannelLuminance,
	}
}

// Validate reports the first configuration problem in p, or nil.
func (p Params) Validate() error {
	if p.Threshold < 0 || p.Threshold > MaxIntensity {
		return &ConfigError{Field: "threshold", Reason: fmt.Sprintf("%d outside 0-%d", p.Threshold, MaxIntensity)}
	}
	if p.MinArea < 0 {
		return &ConfigError{Field: "min_area", Reason: fmt.Sprintf("%d is negative", p.MinArea)}
	}
	if p.MaxArea < 0 {
		return &ConfigError{Field: "max_area", Reason: fmt.Sprintf("%d is negative", p.MaxArea)}
	}
	if p.MinArea > p.MaxArea {
		return &ConfigError{Field: "min_area", Reason: fmt.Sprintf("%d exceeds max_area %d", p.MinArea, p.MaxArea)}
	}
	if p.SmoothingRadius < 0 {
		return &ConfigError{Field: "smoothing_radius", Reason: fmt.Sprintf("%g is negative", p.SmoothingRadius)}
	}
	switch p.Connectivity {
	case 0, Connectivity4, Connectivity8:
	default:
		return &ConfigError{Field: "connectivity", Reason: fmt.Sprintf("%d is not 4 or 8", p.Connectivity)}
	}
	if _, err := ParseChannel(string(p.Channel)); err != nil {
		return err
	}
	return nil
}

// normalized fills zero-valued optional fields with their defaults.
func (p Params) normalized() Params {
	if p.Connectivity == 0 {
		p.Connectivity = Connectivity8
	}
	if p.Channel == "" {
		p.Channel = ChannelLuminance
	}
	return p
}

// ParseChannel converts a channel name into a Channel. The empty string maps
// to ChannelLuminance.
func ParseChannel(name string) (Channel, error) {
	switch Channel(strings.ToLower(name)) {
	case "", ChannelLuminance:
		return ChannelLuminance, nil
	case ChannelRed:
		return ChannelRed, nil
	case ChannelGreen:
		return ChannelGreen, nil
	case ChannelBlue:
		return ChannelBlue, nil
	case ChannelLightness:
		return ChannelLightness, nil
	}
	return "", &ConfigError{Field: "channel", Reason: fmt.Sprintf("unknown channel %q", name)}
}
