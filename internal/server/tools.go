package server

import "github.com/ironsheep/idcard-studio/internal/card"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the source photo",
}

var viewportProperties = map[string]interface{}{
	"viewport_width": map[string]interface{}{
		"type":        "number",
		"description": "Width of the editor viewport the photo is fitted into. Defaults to the server setting",
	},
	"viewport_height": map[string]interface{}{
		"type":        "number",
		"description": "Height of the editor viewport the photo is fitted into. Defaults to the server setting",
	},
}

var regionSchema = map[string]interface{}{
	"type":        "object",
	"description": "Crop rectangle as fractions of the displayed photo, each in [0,1]. Defaults to the centred square default crop",
	"properties": map[string]interface{}{
		"x":      map[string]interface{}{"type": "number"},
		"y":      map[string]interface{}{"type": "number"},
		"width":  map[string]interface{}{"type": "number"},
		"height": map[string]interface{}{"type": "number"},
	},
	"required": []string{"x", "y", "width", "height"},
}

var paramsSchema = map[string]interface{}{
	"type":        "object",
	"description": "Edit sliders. Omitted values are neutral",
	"properties": map[string]interface{}{
		"rotation": map[string]interface{}{
			"type":        "number",
			"description": "Clockwise rotation in degrees, [0,360). Default 0",
		},
		"zoom": map[string]interface{}{
			"type":        "number",
			"description": "Zoom factor about the image centre, >= 1. Default 1",
		},
		"brightness": map[string]interface{}{
			"type":        "number",
			"description": "Brightness percent, 100 is unchanged. Default 100",
		},
		"contrast": map[string]interface{}{
			"type":        "number",
			"description": "Contrast percent, 100 is unchanged. Default 100",
		},
		"sharpen": map[string]interface{}{
			"type":        "number",
			"description": "Sharpen amount percent, [0,100]. Default 0",
		},
		"vignette": map[string]interface{}{
			"type":        "number",
			"description": "Vignette strength percent, [0,100]. Default 0",
		},
	},
}

var normalizeProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Clamp sliders into the editor ranges instead of rejecting out-of-range values",
	"default":     false,
}

// withProperties returns a copy of base with extra merged in.
func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Photo Operations
		{
			Name:        "photo_load",
			Description: "Load a source photo and return its natural size, the size it is displayed at in the editor, and file metadata.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(viewportProperties, map[string]interface{}{
					"path": pathProperty,
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "photo_default_crop",
			Description: "Return the crop region the editor starts with: centred, 90% of the displayed width, with a fixed aspect ratio.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(viewportProperties, map[string]interface{}{
					"path": pathProperty,
					"aspect": map[string]interface{}{
						"type":        "number",
						"description": "Width/height ratio of the crop. Default 1.0 (profile photo)",
						"default":     1.0,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "photo_render",
			Description: "Crop, rotate, zoom and filter a photo and return the result as base64-encoded PNG. Preview renders are coalesced: when a newer preview arrives first, the older call returns superseded instead of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"region":    regionSchema,
					"params":    paramsSchema,
					"normalize": normalizeProperty,
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{renderModePreview, renderModeFinal},
						"description": "preview for fast interactive renders, final for the high quality export. Default preview",
						"default":     renderModePreview,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Output pixels per source pixel. Defaults to the server preview or export scale",
					},
				},
				"required": []string{"path"},
			},
		},

		// Card Operations
		{
			Name:        "card_get",
			Description: "Return the current ID card document and whether undo and redo are available.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "card_update",
			Description: "Change card fields. Only the given fields change; a details array replaces the whole list. Identical updates do not add an undo step.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"fields": map[string]interface{}{
						"type":        "object",
						"description": "Card fields to set, using the card_get field names",
						"properties": map[string]interface{}{
							"photoShape": map[string]interface{}{
								"type": "string",
								"enum": card.PhotoShapes,
							},
							"orientation": map[string]interface{}{
								"type": "string",
								"enum": []string{"portrait", "landscape"},
							},
							"theme": map[string]interface{}{
								"type": "string",
								"enum": append(card.ThemeNames(), card.CustomTheme),
							},
							"backgroundType": map[string]interface{}{
								"type": "string",
								"enum": []string{"gradient", "solid", "image"},
							},
							"backgroundImageFit": map[string]interface{}{
								"type": "string",
								"enum": []string{"cover", "contain", "tile"},
							},
						},
						"additionalProperties": true,
					},
				},
				"required": []string{"fields"},
			},
		},
		{
			Name:        "card_set_photo",
			Description: "Render a photo at export quality and place it on the card. Nothing changes if the render fails.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty,
					"region":    regionSchema,
					"params":    paramsSchema,
					"normalize": normalizeProperty,
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Output pixels per source pixel. Defaults to the server export scale",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "card_undo",
			Description: "Restore the previous card. Does nothing when there is nothing to undo.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "card_redo",
			Description: "Reapply the card change that was last undone. Does nothing when there is nothing to redo.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
