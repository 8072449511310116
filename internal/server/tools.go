package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

var rectSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x":      map[string]interface{}{"type": "number"},
		"y":      map[string]interface{}{"type": "number"},
		"width":  map[string]interface{}{"type": "number"},
		"height": map[string]interface{}{"type": "number"},
	},
	"required": []string{"x", "y", "width", "height"},
}

var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x": map[string]interface{}{"type": "number"},
		"y": map[string]interface{}{"type": "number"},
	},
	"required": []string{"x", "y"},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Documents
		{
			Name:        "lci_inspect",
			Description: "Read an LCI document and list its layers with names, properties, placement, blend mode and payload size. Optionally summarize each layer's colour and coverage.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the .lci file"),
					"include_colors": map[string]interface{}{
						"type":        "boolean",
						"description": "Decode every layer and report its average colour and opaque coverage. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lci_pack",
			Description: "Build an LCI document from a YAML manifest of layer images and write it to disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"manifest": pathProperty("Absolute path to the YAML manifest"),
					"output":   pathProperty("Absolute path of the .lci file to write"),
				},
				"required": []string{"manifest", "output"},
			},
		},
		{
			Name:        "lci_unpack",
			Description: "Extract every layer of an LCI document as a full-size PNG plus a manifest that lci_pack can rebuild from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       pathProperty("Absolute path to the .lci file"),
					"output_dir": pathProperty("Directory to write the layer images and manifest.yaml into"),
				},
				"required": []string{"path", "output_dir"},
			},
		},
		{
			Name:        "lci_flatten",
			Description: "Composite the visible artwork layers of an LCI document into one image. Writes a PNG when output is given, otherwise returns it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty("Absolute path to the .lci file"),
					"output": pathProperty("Optional PNG path to write"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the returned preview. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lci_collision_query",
			Description: "Query the collision boxes (multiBounds and bounds) of an LCI document at a point or over a rectangle. With neither, list every box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty("Absolute path to the .lci file"),
					"point": pointSchema,
					"rect":  rectSchema,
					"exclude_group": map[string]interface{}{
						"type":        "string",
						"description": "Skip boxes from layers in this physicsGroup",
					},
				},
				"required": []string{"path"},
			},
		},

		// Layer names
		{
			Name:        "lci_parse_layer_name",
			Description: "Parse a layer name of the form 'name|key=value|flag' into its bare name and properties.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Full layer name including property segments",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "lci_format_layer_name",
			Description: "Compose a layer name from a bare name and properties. The inverse of lci_parse_layer_name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Bare layer name",
					},
					"properties": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"restrict":     map[string]interface{}{"type": "boolean"},
							"layer":        map[string]interface{}{"type": "string"},
							"anchor":       pointSchema,
							"offset":       pointSchema,
							"physicsGroup": map[string]interface{}{"type": "string"},
							"bounds":       rectSchema,
							"placeholder":  map[string]interface{}{"type": "string"},
							"multiBounds": map[string]interface{}{
								"type":  "array",
								"items": rectSchema,
							},
							"data": map[string]interface{}{
								"type":                 "object",
								"additionalProperties": map[string]interface{}{"type": "string"},
							},
						},
					},
				},
				"required": []string{"name"},
			},
		},

		// Layer images
		{
			Name:        "image_load",
			Description: "Load a layer source image and return its dimensions, format and alpha information.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lci_opaque_bounds",
			Description: "Find the smallest rectangle holding every non-transparent pixel of an image, as used for restricted layers. Optionally return the trimmed region as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"include_preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the trimmed region as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lci_multibounds",
			Description: "Decompose the opaque pixels of an image into rectangles, as stored for multiBounds layers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
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
