package detection

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/lucasb-eyer/go-colorful"
)

// Gray is an immutable single-channel intensity image. Pix holds Width*Height
// samples in row-major order.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray wraps pix as a Gray image. pix is not copied; callers must not
// modify it afterwards.
func NewGray(width, height int, pix []uint8) (*Gray, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("sample count %d does not match %dx%d", len(pix), width, height)
	}
	return &Gray{Width: width, Height: height, Pix: pix}, nil
}

// At returns the sample at (x, y). No bounds checking is performed.
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// ToGray reduces img to one channel. The result is always a fresh buffer
// with origin (0, 0), regardless of img.Bounds().Min.
func ToGray(img image.Image, ch Channel) *Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pix := make([]uint8, width*height)

	if src, ok := img.(*image.Gray); ok && ch != ChannelLightness {
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+width]
			copy(pix[y*width:(y+1)*width], row)
		}
		return &Gray{Width: width, Height: height, Pix: pix}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = reduce(img.At(x+bounds.Min.X, y+bounds.Min.Y), ch)
		}
	}
	return &Gray{Width: width, Height: height, Pix: pix}
}

// reduce maps one colour to an intensity according to ch.
func reduce(c color.Color, ch Channel) uint8 {
	r, g, b, _ := c.RGBA()
	switch ch {
	case ChannelRed:
		return uint8(r >> 8)
	case ChannelGreen:
		return uint8(g >> 8)
	case ChannelBlue:
		return uint8(b >> 8)
	case ChannelLightness:
		cf, ok := colorful.MakeColor(c)
		if !ok {
			// Fully transparent pixels carry no colour.
			return 0
		}
		l, _, _ := cf.Lab()
		return clampByte(l * MaxIntensity)
	}
	return clampByte(float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114)
}

// Intensity returns the value ToGray assigns to c under ch.
func Intensity(c color.Color, ch Channel) uint8 {
	if g, ok := c.(color.Gray); ok && ch != ChannelLightness {
		return g.Y
	}
	return reduce(c, ch)
}

// Prepare applies the pre-processing knobs of p to img and reduces it to a
// Gray image. img is never modified.
func Prepare(img image.Image, p Params) *Gray {
	p = p.normalized()
	src := img
	if p.SmoothingRadius > 0 {
		src = blur.Gaussian(img, p.SmoothingRadius)
	}
	return ToGray(src, p.Channel)
}

// Image returns g as an *image.Gray, sharing no memory with g.
func (g *Gray) Image() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(out.Pix, g.Pix)
	return out
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= MaxIntensity {
		return MaxIntensity
	}
	return uint8(v + 0.5)
}
