// Package annotation merges automatic colony detections with manual
// corrections.
//
// Manual corrections are never applied to a colony list directly. They are
// recorded in an append-only Log of ADD and REMOVE edits and replayed
// against whatever the detection pass currently produces. Because the log
// is independent of detection parameters, it stays valid when the user
// re-tunes the threshold or size range: an edit whose target no longer
// exists is simply a no-op.
//
// # Matching
//
// Edits and colonies are matched spatially. A REMOVE hits the automatic
// region that contains its coordinate, otherwise the nearest active colony
// centre within DefaultTolerance (8 px). A REMOVE made by colony id keeps
// that id as TargetID and only suppresses the colony it was aimed at, even
// when that colony is already gone. An ADD is dropped when an active
// colony, automatic or manual, already covers its coordinate under the same
// rule, so a repeated click never counts twice.
//
// # Identity
//
// Colony ids must stay stable while the user edits and re-tunes, but region
// labels from the detection pass change on every run. AssignIdentities
// therefore matches each new colony to the previous output by centre
// distance and carries the old id across; unmatched colonies get fresh ids.
package annotation
