// Package export renders batch and session results as CSV.
//
// The per-image layout matches the columns downstream spreadsheets already
// expect (filename, count, auto_count, manual_added, manual_removed,
// image_id, parameters) followed by a status and error column so failed
// images stay visible as flagged rows.
package export
