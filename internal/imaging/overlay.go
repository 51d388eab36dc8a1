package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// OverlayStyle controls how colonies are marked.
type OverlayStyle struct {
	// Marker colours as hex strings ("#RRGGBB").
	AutomaticColor string
	ManualColor    string
	RemovedColor   string

	// Radius of the circle drawn around each colony centre.
	Radius int

	// ShowRemoved draws removed colonies as crosses.
	ShowRemoved bool

	// ShowIDs prints each colony id next to its marker.
	ShowIDs bool
}

// DefaultOverlayStyle returns green automatic, blue manual and red removed
// markers of radius 6.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		AutomaticColor: "#00c853",
		ManualColor:    "#2962ff",
		RemovedColor:   "#d50000",
		Radius:         6,
	}
}

// OverlayResult is the marked-up image plus what was drawn.
type OverlayResult struct {
	ImageResult
	Drawn  int `json:"drawn"`
	Hidden int `json:"hidden"`
}

// Overlay draws a marker for each colony on a copy of img.
//
// Active colonies get a circle in the colour for their origin. Removed
// colonies are skipped unless style.ShowRemoved is set, in which case they
// get a cross. Colony coordinates are relative to the image origin.
func Overlay(img image.Image, colonies []detection.Colony, style OverlayStyle) (*OverlayResult, error) {
	if style.Radius <= 0 {
		return nil, fmt.Errorf("marker radius must be positive, got %d", style.Radius)
	}
	auto, err := parseHexColor(style.AutomaticColor)
	if err != nil {
		return nil, fmt.Errorf("automatic colour: %w", err)
	}
	manual, err := parseHexColor(style.ManualColor)
	if err != nil {
		return nil, fmt.Errorf("manual colour: %w", err)
	}
	removed, err := parseHexColor(style.RemovedColor)
	if err != nil {
		return nil, fmt.Errorf("removed colour: %w", err)
	}

	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	labelBg := color.RGBA{0, 0, 0, 180}
	drawn, skipped := 0, 0
	for _, c := range colonies {
		cx, cy := int(math.Round(c.Center.X)), int(math.Round(c.Center.Y))
		var fg color.RGBA
		switch {
		case !c.Active():
			if !style.ShowRemoved {
				skipped++
				continue
			}
			fg = removed
			drawCross(result, cx, cy, style.Radius, fg)
		case c.Origin == detection.OriginManual:
			fg = manual
			drawCircle(result, cx, cy, style.Radius, fg)
		default:
			fg = auto
			drawCircle(result, cx, cy, style.Radius, fg)
		}
		drawn++
		if style.ShowIDs && c.ID != "" {
			drawLabel(result, cx+style.Radius+2, cy-3, c.ID, fg, labelBg)
		}
	}

	enc, err := EncodePNG(result)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{ImageResult: *enc, Drawn: drawn, Hidden: skipped}, nil
}

// parseHexColor parses "#RRGGBB" or "#RGB" into an opaque RGBA colour.
func parseHexColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// drawCircle draws a one pixel wide circle outline (midpoint algorithm).
func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	x, y := r, 0
	d := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			setClipped(img, cx+p[0], cy+p[1], c)
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// drawCross draws the two diagonals of the square of half-width r.
func drawCross(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for i := -r; i <= r; i++ {
		setClipped(img, cx+i, cy+i, c)
		setClipped(img, cx+i, cy-i, c)
	}
}

// drawLabel draws a text label in a 3x5 pixel font at the given position.
// Only the characters used in colony ids are available.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		'c': {"000", "111", "100", "100", "111"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setClipped(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
