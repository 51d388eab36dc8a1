// Package batch runs the colony pipeline over many images.
//
// Each Item supplies its own decoder, parameters and edit log. Run fans the
// items out over a bounded errgroup pool and collects one Result per item in
// input order. A decode or detection failure is confined to its own row.
package batch
