// Package imaging handles the pixels around the colony pipeline: decoding
// plate images, caching them between re-tuning passes, and rendering what a
// client looks at (previews, masks, marker overlays and colony close-ups).
//
// # Coordinate System
//
// All pixel coordinates are 0-based and relative to the image origin:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Rectangles are half-open: Min is inclusive, Max is exclusive
//
// These match the coordinates produced by the detection package, so a
// colony centre can be drawn or cropped without conversion.
//
// # Formats
//
// PNG, JPEG, GIF, TIFF and BMP are decoded. Every rendered output is a
// base64 PNG in an ImageResult.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The render functions never modify
// their input and can be called concurrently on the same image.
package imaging
