package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "panels_extract_folder",
			Description: "Extract comic panels from every page image in a folder. Pages are processed in sorted filename order; the result lists each page's panels in percent coordinates, sorted top to bottom.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"folder": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the folder holding the page images",
					},
				},
				"required": []string{"folder"},
			},
		},
		{
			Name:        "panels_extract_chapter",
			Description: "Download every page image of a chapter web page and extract its panels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"chapter_url": map[string]interface{}{
						"type":        "string",
						"description": "http(s) URL of the chapter page",
					},
				},
				"required": []string{"chapter_url"},
			},
		},
		{
			Name:        "panels_segment_image",
			Description: "Segment a single page image into panels. Optionally returns each panel crop as base64 PNG or writes an outlined overlay for visual checking.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the page image",
					},
					"min_pct": map[string]interface{}{
						"type":        "number",
						"description": "Smallest panel area in percent of the page. Default 2",
						"default":     2,
					},
					"max_pct": map[string]interface{}{
						"type":        "number",
						"description": "Largest panel area in percent of the page. Default 90",
						"default":     90,
					},
					"include_crops": map[string]interface{}{
						"type":        "boolean",
						"description": "Return every panel crop as base64 PNG",
						"default":     false,
					},
					"overlay_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write a copy of the page with numbered panel outlines",
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Decode the page from disk again instead of using the cached copy",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}
