package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Preview returns a browser-friendly PNG of img whose longest edge is at
// most maxSize. Smaller images are encoded unchanged. TIFF and 16-bit
// sources are converted to 8-bit NRGBA on the way.
func Preview(img image.Image, maxSize int) (*ImageResult, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("max size must be positive, got %d", maxSize)
	}

	var out image.Image = imaging.Clone(img)
	b := img.Bounds()
	if b.Dx() > maxSize || b.Dy() > maxSize {
		out = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}
	return EncodePNG(out)
}
