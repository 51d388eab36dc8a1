package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func imageIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Image id returned by colony_load",
	}
}

// paramsProperty describes a detection parameter object. Every field is
// optional; omitted fields keep the image's last value or the server default.
func paramsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Detection parameters. Omitted fields keep the image's last value, or the server default before the first detection.",
		"properties": map[string]interface{}{
			"threshold": map[string]interface{}{
				"type":        "integer",
				"description": "Intensity cutoff 0-255. Pixels at or above it are colony pixels (at or below with dark_foreground).",
				"minimum":     0,
				"maximum":     255,
			},
			"min_area": map[string]interface{}{
				"type":        "integer",
				"description": "Smallest colony area in pixels, inclusive",
				"minimum":     0,
			},
			"max_area": map[string]interface{}{
				"type":        "integer",
				"description": "Largest colony area in pixels, inclusive",
				"minimum":     0,
			},
			"smoothing_radius": map[string]interface{}{
				"type":        "number",
				"description": "Gaussian blur radius applied before thresholding. 0 disables smoothing.",
				"minimum":     0,
			},
			"connectivity": map[string]interface{}{
				"type":        "integer",
				"description": "Pixel neighbourhood used to join colony pixels",
				"enum":        []int{4, 8},
			},
			"channel": map[string]interface{}{
				"type":        "string",
				"description": "How colour images are reduced to one intensity channel",
				"enum":        []string{"luminance", "red", "green", "blue", "lightness"},
			},
			"dark_foreground": map[string]interface{}{
				"type":        "boolean",
				"description": "Count dark colonies on light agar",
			},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Images and sessions
		{
			Name:        "colony_load",
			Description: "Register one or more plate images in a session and return their ids, dimensions and format. Every file must decode or nothing is registered.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a single image file",
					},
					"paths": map[string]interface{}{
						"type":        "array",
						"description": "Absolute paths to several image files",
						"items":       map[string]interface{}{"type": "string"},
					},
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Existing session to add the images to. A new session is created when omitted.",
					},
				},
			},
		},
		{
			Name:        "colony_preview",
			Description: "Return a downscaled PNG preview of a registered image. Works for TIFF and BMP sources too.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Longest edge in pixels (default from server config)",
					},
				},
				"required": []string{"image_id"},
			},
		},
		{
			Name:        "colony_remove",
			Description: "Drop an image from its session together with its detections and manual edits. The session stays, even when empty.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
				},
				"required": []string{"image_id"},
			},
		},

		// Detection and tuning
		{
			Name:        "colony_detect",
			Description: "Run threshold detection on an image, then re-apply its manual edits. Returns the final count, the breakdown into automatic and manual colonies, and the colony list. Colony ids stay stable across re-runs with new parameters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"params":   paramsProperty(),
					"include_mask": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the binary foreground mask as a PNG",
						"default":     false,
					},
				},
				"required": []string{"image_id"},
			},
		},
		{
			Name:        "colony_sample",
			Description: "Report the intensity the detector sees at given pixels. Label points \"colony\" and \"agar\" to get a suggested threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Pixels to sample",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
					"params": paramsProperty(),
				},
				"required": []string{"image_id", "points"},
			},
		},

		// Manual corrections
		{
			Name:        "colony_annotate",
			Description: "Append manual corrections to an image's edit log and return the reconciled counts. Edits are applied in order and survive later re-detection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"clear": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop all previous edits before applying these",
						"default":     false,
					},
					"edits": map[string]interface{}{
						"type":        "array",
						"description": "Corrections in the order they were made",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"kind": map[string]interface{}{
									"type": "string",
									"enum": []string{"add", "remove"},
								},
								"x": map[string]interface{}{"type": "number"},
								"y": map[string]interface{}{"type": "number"},
								"colony_id": map[string]interface{}{
									"type":        "string",
									"description": "Remove this colony instead of giving x/y",
								},
							},
						},
					},
				},
				"required": []string{"image_id"},
			},
		},
		{
			Name:        "colony_list",
			Description: "List the current colonies of an image with their ids, origin, centre and area.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"include_removed": map[string]interface{}{
						"type":        "boolean",
						"description": "Include automatic colonies suppressed by a manual remove",
						"default":     false,
					},
					"include_edits": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the raw edit log",
						"default":     false,
					},
				},
				"required": []string{"image_id"},
			},
		},

		// Visual review
		{
			Name:        "colony_overlay",
			Description: "Draw colony markers on the image: green for automatic, blue for manual. Returns a PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"show_removed": map[string]interface{}{
						"type":        "boolean",
						"description": "Mark removed colonies with a red cross",
						"default":     false,
					},
					"show_ids": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each marker with its colony id",
						"default":     false,
					},
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Marker radius in pixels (default from server config)",
					},
				},
				"required": []string{"image_id"},
			},
		},
		{
			Name:        "colony_crop",
			Description: "Crop and zoom the area around one colony for close inspection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"colony_id": map[string]interface{}{
						"type":        "string",
						"description": "Colony id from colony_detect or colony_list",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context around the colony",
						"default":     10,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Zoom factor",
						"default":     4.0,
					},
				},
				"required": []string{"image_id", "colony_id"},
			},
		},

		// Export and batch
		{
			Name:        "colony_results",
			Description: "Summarise every image in a session as CSV: filename, count, auto_count, manual_added, manual_removed, image_id, parameters. Images never detected report their manual count with empty parameters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session id returned by colony_load",
					},
					"include_colonies": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a per-colony CSV with coordinates",
						"default":     false,
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "colony_batch",
			Description: "Count colonies on many images in parallel with one parameter set. A file that fails to decode is reported as failed without affecting the others. Session images keep their manual edits.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Process every image in this session",
					},
					"paths": map[string]interface{}{
						"type":        "array",
						"description": "Image files to process without registering them",
						"items":       map[string]interface{}{"type": "string"},
					},
					"params": paramsProperty(),
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Concurrent images (default from server config, then CPU count)",
						"minimum":     0,
					},
					"include_colonies": map[string]interface{}{
						"type":        "boolean",
						"description": "Include colony lists and a per-colony CSV",
						"default":     false,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
