package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// Crop extracts the half-open rectangle r from img and optionally rescales
// it. r is in img's coordinate space.
func Crop(img image.Image, r image.Rectangle, scale float64) (*ImageResult, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: must have positive width and height", r)
	}

	cropped := imaging.Crop(img, r)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
		// Nearest neighbour keeps colony edges crisp when zooming in.
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
	}

	return EncodePNG(cropped)
}

// CropColony cuts a close-up around one colony.
//
// Automatic colonies are cropped to their bounding box grown by padding on
// every side; manual colonies, which have no box, to a square of side
// 2*padding+1 centred on the placed point. The window is clipped to the
// image. Colony coordinates are relative to the image origin.
func CropColony(img image.Image, c detection.Colony, padding int, scale float64) (*ImageResult, error) {
	if padding < 0 {
		return nil, fmt.Errorf("padding must not be negative, got %d", padding)
	}

	var r image.Rectangle
	if c.Bounds != nil {
		r = c.Bounds.Rect()
	} else {
		x, y := int(c.Center.X+0.5), int(c.Center.Y+0.5)
		r = image.Rect(x, y, x+1, y+1)
	}
	r = r.Inset(-padding).Add(img.Bounds().Min).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("colony %s lies outside the image", c.ID)
	}

	return Crop(img, r, scale)
}
