package detection

import (
	"fmt"
	"image"
)

// Mask is a foreground/background map with the same dimensions as the image
// it was produced from. Bits is row-major; true marks foreground.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// At reports whether (x, y) is foreground. Out-of-range coordinates are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Foreground returns the number of foreground pixels.
func (m *Mask) Foreground() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Image renders m as black background with white (255) foreground.
func (m *Mask) Image() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, b := range m.Bits {
		if b {
			out.Pix[i] = 255
		}
	}
	return out
}

// Binarize thresholds g into a Mask.
//
// With dark=false a pixel is foreground when its intensity is at or above
// threshold (bright colonies on dark background). With dark=true it is
// foreground at or below threshold. The polarity is fixed by configuration
// and never inferred from the image.
//
// A threshold outside 0-255 returns a *ConfigError. Any image content,
// including a uniform image, produces a valid mask.
func Binarize(g *Gray, threshold int, dark bool) (*Mask, error) {
	if threshold < 0 || threshold > MaxIntensity {
		return nil, &ConfigError{Field: "threshold", Reason: fmt.Sprintf("%d outside 0-%d", threshold, MaxIntensity)}
	}

	bits := make([]bool, len(g.Pix))
	t := uint8(threshold)
	for i, v := range g.Pix {
		if dark {
			bits[i] = v <= t
		} else {
			bits[i] = v >= t
		}
	}
	return &Mask{Width: g.Width, Height: g.Height, Bits: bits}, nil
}
