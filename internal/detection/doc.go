// Package detection implements the automatic colony pass for soft-agar
// microscopy images.
//
// The pass turns one image and one parameter set into a set of automatic
// colonies. It is a pure transformation: no state survives a call, the
// input image is never modified, and calling it again with different
// parameters (live re-tuning) costs exactly one more pass.
//
// # Pipeline
//
//  1. Pre-processing: optional Gaussian smoothing (bild) and reduction of a
//     colour image to one intensity channel (BT.601 luma, a single RGB
//     component, or CIE L* via go-colorful)
//  2. Binarization: intensity at or above the threshold is foreground
//     (bright colonies on dark agar), or at or below it when the polarity is
//     configured for dark colonies
//  3. Region extraction: 8- or 4-connected components, one raster pass with
//     an iterative flood fill
//  4. Size filtering: regions outside [MinArea, MaxArea] are dropped
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at the top-left pixel of the image, regardless of the
//     source image's Bounds().Min
//   - X increases rightward
//   - Y increases downward
//   - A pixel's centre is at its integer coordinate; centroids are the mean
//     of member pixel coordinates
//   - Bounds are inclusive on all four edges
//
// # Identity
//
// Region labels are scoped to a single extraction. They follow raster order
// so that output is deterministic, but they are not identities: the same
// physical colony can receive a different label after a parameter change.
// Stable colony identity is the annotation package's job.
//
// # Errors
//
// Parameter problems (threshold outside 0-255, negative areas, min_area
// greater than max_area, unknown channel or connectivity) are reported as
// *ConfigError before any pixel is processed. Image content never causes an
// error; an image with no foreground simply yields an empty set.
package detection
