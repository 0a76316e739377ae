package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// sourceProperties describes how a tool receives its image: a file path, or
// inline base64 data with an optional format hint.
func sourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file. Either path or image_base64 is required.",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded image data (PNG, JPEG, GIF, BMP, TIFF or WebP)",
		},
		"format": map[string]interface{}{
			"type":        "string",
			"description": "Format hint for image_base64, e.g. \"png\" or \"image/jpeg\"",
		},
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Original file name, used to name downloads. Defaults to the path base name or \"panel\"",
		},
	}
}

// gridProperties describes the grid parameters shared by the panel tools.
func gridProperties() map[string]interface{} {
	return map[string]interface{}{
		"columns": map[string]interface{}{
			"type":        "integer",
			"description": "Number of pages across (1-10). Default from configuration, normally 2",
			"minimum":     1,
			"maximum":     10,
		},
		"rows": map[string]interface{}{
			"type":        "integer",
			"description": "Number of pages down (1-10). Default from configuration, normally 2",
			"minimum":     1,
			"maximum":     10,
		},
		"margin": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels removed between adjacent pages (0-100). Default from configuration, normally 10",
			"minimum":     0,
			"maximum":     100,
		},
	}
}

// merge returns the union of the property maps; later maps win.
func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Decode an image and return its dimensions, detected format and color depth.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sourceProperties(),
			},
		},

		// Layout
		{
			Name:        "panel_partition",
			Description: "Compute the crop rectangle of every page for an image of the given size, without reading any pixels. Pages are listed row by row.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(gridProperties(), map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Source image width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Source image height in pixels",
					},
				}),
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "panel_process",
			Description: "Split an image into a grid of pages and return the layout, a preview sheet of the pages in grid order and an overlay of the cut lines on the original.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(sourceProperties(), gridProperties(), map[string]interface{}{
					"thumbnails": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a thumbnail of every page (default false)",
						"default":     false,
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the cut-line overlay of the original (default true)",
						"default":     true,
					},
				}),
			},
		},

		// Downloads
		{
			Name:        "panel_download_page",
			Description: "Return one page of the panel as a PNG. Pages are numbered from 1, row by row.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(sourceProperties(), gridProperties(), map[string]interface{}{
					"page": map[string]interface{}{
						"type":        "integer",
						"description": "1-based page number in row-major order",
						"minimum":     1,
					},
				}),
				"required": []string{"page"},
			},
		},
		{
			Name:        "panel_download_pdf",
			Description: "Return the whole panel as a PDF with one page per panel page, in row-major order.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": merge(sourceProperties(), gridProperties()),
			},
		},
		{
			Name:        "panel_download_png",
			Description: "Return the whole-panel PNG export. This export contains only the first page; use panel_download_pdf or panel_download_page for the others.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": merge(sourceProperties(), gridProperties()),
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
