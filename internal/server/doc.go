// Package server implements the MCP (Model Context Protocol) server for
// counting colonies on soft-agar plate images.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Logs go to the zerolog logger passed to New and never to stdout.
//
// # Available Tools
//
// Images and sessions:
//   - colony_load: Register images in a session
//   - colony_preview: Downscaled PNG of a registered image
//   - colony_remove: Drop an image and its edits from its session
//
// Detection and tuning:
//   - colony_detect: Threshold detection plus replay of manual edits
//   - colony_sample: Intensity at chosen pixels, with a threshold hint
//
// Manual corrections:
//   - colony_annotate: Append add/remove edits
//   - colony_list: Current colonies and counts
//
// Visual review:
//   - colony_overlay: Markers drawn on the image
//   - colony_crop: Zoomed view of one colony
//
// Export and batch:
//   - colony_results: Session summary as CSV
//   - colony_batch: Parallel counting over many images
//
// # State
//
// Each registered image has a record in a session.Store holding its last
// parameters, last automatic detection, manual edit log and last reconciled
// colony list. Edits are kept separately from detection output, so changing
// parameters and re-running colony_detect re-applies every correction.
// Decoded pixels live in an imaging.ImageCache keyed by path.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A failed tool call never changes stored state.
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal().Err(err).Msg("server error")
//	}
package server
