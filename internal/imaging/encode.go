package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/ironsheep/colony-counter-mcp/internal/detection"
)

// ImageResult is an encoded image returned to a client.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*ImageResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &ImageResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EncodeMask renders a binary mask as a base64 PNG with white foreground.
func EncodeMask(m *detection.Mask) (*ImageResult, error) {
	if m == nil {
		return nil, fmt.Errorf("nil mask")
	}
	return EncodePNG(m.Image())
}
