package server

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ironsheep/lci-tools/internal/blendmode"
	"github.com/ironsheep/lci-tools/internal/compose"
	"github.com/ironsheep/lci-tools/internal/geometry"
	"github.com/ironsheep/lci-tools/internal/imaging"
	"github.com/ironsheep/lci-tools/internal/layername"
	"github.com/ironsheep/lci-tools/internal/lci"
	"github.com/ironsheep/lci-tools/internal/pack"
	"github.com/ironsheep/lci-tools/internal/physics"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lci_inspect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Documents
	case "lci_inspect":
		return s.handleInspect(args)
	case "lci_pack":
		return s.handlePack(args)
	case "lci_unpack":
		return s.handleUnpack(args)
	case "lci_flatten":
		return s.handleFlatten(args)
	case "lci_collision_query":
		return s.handleCollisionQuery(args)

	// Layer names
	case "lci_parse_layer_name":
		return s.handleParseLayerName(args)
	case "lci_format_layer_name":
		return s.handleFormatLayerName(args)

	// Layer images
	case "image_load":
		return s.handleImageLoad(args)
	case "lci_opaque_bounds":
		return s.handleOpaqueBounds(args)
	case "lci_multibounds":
		return s.handleMultiBounds(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as an
// empty object.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func requireField(name, value string) error {
	if value == "" {
		return fmt.Errorf("missing required argument %q", name)
	}
	return nil
}

// === Document Handlers ===

type inspectArgs struct {
	Path          string `json:"path"`
	IncludeColors bool   `json:"include_colors"`
}

// LayerSummary describes one layer of an inspected document.
type LayerSummary struct {
	Index       int                   `json:"index"`
	Name        string                `json:"name"`
	RawName     string                `json:"raw_name"`
	IsDataLayer bool                  `json:"is_data_layer"`
	Visible     bool                  `json:"visible"`
	Opacity     uint8                 `json:"opacity"`
	BlendMode   int                   `json:"blend_mode"`
	BlendName   string                `json:"blend_name"`
	Offset      pixelPoint            `json:"offset"`
	Position    geometry.Point        `json:"position"`
	ContentSize pixelPoint            `json:"content_size"`
	Properties  *layername.Properties `json:"properties"`
	Color       *imaging.ColorSummary `json:"color,omitempty"`
}

type pixelPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InspectResult is the lci_inspect result.
type InspectResult struct {
	Path   string         `json:"path"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Layers []LayerSummary `json:"layers"`
}

func (s *Server) handleInspect(args json.RawMessage) (interface{}, error) {
	var a inspectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("path", a.Path); err != nil {
		return nil, err
	}

	dd, err := lci.DecodeFile(a.Path)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		Path:   a.Path,
		Width:  dd.Width,
		Height: dd.Height,
		Layers: make([]LayerSummary, 0, len(dd.Layers)),
	}
	for i := range dd.Layers {
		ld := &dd.Layers[i]
		img, err := lci.DecodeImageURI(ld.Image)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", ld.Name, err)
		}

		blendName := "unknown"
		if mode, err := blendmode.FromTarget(ld.BlendMode); err == nil {
			blendName = mode.String()
		}

		summary := LayerSummary{
			Index:       i,
			Name:        ld.Name,
			RawName:     ld.RawName,
			IsDataLayer: ld.IsDataLayer,
			Visible:     ld.Visible,
			Opacity:     ld.Opacity,
			BlendMode:   int(ld.BlendMode),
			BlendName:   blendName,
			Offset:      pixelPoint{X: ld.OffsetX, Y: ld.OffsetY},
			Position:    ld.Position,
			ContentSize: pixelPoint{X: img.Bounds().Dx(), Y: img.Bounds().Dy()},
			Properties:  ld.Properties,
		}
		if a.IncludeColors {
			summary.Color = imaging.LayerColor(img)
		}
		result.Layers = append(result.Layers, summary)
	}
	return result, nil
}

type packArgs struct {
	Manifest string `json:"manifest"`
	Output   string `json:"output"`
}

func (s *Server) handlePack(args json.RawMessage) (interface{}, error) {
	var a packArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("manifest", a.Manifest); err != nil {
		return nil, err
	}
	if err := requireField("output", a.Output); err != nil {
		return nil, err
	}

	doc, err := pack.BuildFile(a.Manifest, a.Output, s.cache, lci.WithCompression(s.settings.PNGCompression))
	if err != nil {
		return nil, err
	}
	w, h := doc.Size()
	return map[string]interface{}{
		"output": a.Output,
		"width":  w,
		"height": h,
		"layers": len(doc.RasterLayers()),
	}, nil
}

type unpackArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
}

func (s *Server) handleUnpack(args json.RawMessage) (interface{}, error) {
	var a unpackArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("path", a.Path); err != nil {
		return nil, err
	}
	if err := requireField("output_dir", a.OutputDir); err != nil {
		return nil, err
	}

	doc, err := lci.LoadFile(a.Path)
	if err != nil {
		return nil, err
	}
	files, err := pack.Unpack(context.Background(), doc, a.OutputDir, s.settings.Workers, s.settings.PNGCompression)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"files":    files,
		"manifest": filepath.Join(a.OutputDir, pack.ManifestName),
	}, nil
}

type flattenArgs struct {
	Path   string  `json:"path"`
	Output string  `json:"output"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleFlatten(args json.RawMessage) (interface{}, error) {
	var a flattenArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("path", a.Path); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	doc, err := lci.LoadFile(a.Path)
	if err != nil {
		return nil, err
	}
	img, err := compose.Flatten(doc)
	if err != nil {
		return nil, err
	}

	if a.Output != "" {
		if err := imaging.SavePNG(a.Output, img, s.settings.PNGCompression); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"output": a.Output,
			"width":  img.Bounds().Dx(),
			"height": img.Bounds().Dy(),
		}, nil
	}
	return imaging.CropToPNG(img, img.Bounds(), a.Scale)
}

type collisionQueryArgs struct {
	Path         string          `json:"path"`
	Point        *geometry.Point `json:"point"`
	Rect         *geometry.Rect  `json:"rect"`
	ExcludeGroup string          `json:"exclude_group"`
}

// CollisionResult is the lci_collision_query result.
type CollisionResult struct {
	Hits   []physics.Hit `json:"hits"`
	Total  int           `json:"total"`
	Groups []string      `json:"groups"`
}

func (s *Server) handleCollisionQuery(args json.RawMessage) (interface{}, error) {
	var a collisionQueryArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("path", a.Path); err != nil {
		return nil, err
	}
	if a.Point != nil && a.Rect != nil {
		return nil, fmt.Errorf("point and rect are mutually exclusive")
	}

	dd, err := lci.DecodeFile(a.Path)
	if err != nil {
		return nil, err
	}
	world := physics.Build(dd)

	var hits []physics.Hit
	switch {
	case a.Point != nil:
		hits = world.At(a.Point.X, a.Point.Y, a.ExcludeGroup)
	case a.Rect != nil:
		hits = world.Overlapping(*a.Rect, a.ExcludeGroup)
	default:
		hits = world.All()
	}
	if hits == nil {
		hits = []physics.Hit{}
	}
	return &CollisionResult{
		Hits:   hits,
		Total:  world.Len(),
		Groups: world.Groups(),
	}, nil
}

// === Layer Name Handlers ===

type parseLayerNameArgs struct {
	Name string `json:"name"`
}

func (s *Server) handleParseLayerName(args json.RawMessage) (interface{}, error) {
	var a parseLayerNameArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	props, err := layername.Parse(a.Name, nil, nil)
	if err != nil {
		return nil, err
	}
	name := layername.Name(a.Name)
	return map[string]interface{}{
		"name":          name,
		"properties":    props,
		"is_data_layer": lci.IsDataLayer(name, props),
	}, nil
}

type formatLayerNameArgs struct {
	Name       string                `json:"name"`
	Properties *layername.Properties `json:"properties"`
}

func (s *Server) handleFormatLayerName(args json.RawMessage) (interface{}, error) {
	var a formatLayerNameArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("name", a.Name); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"raw_name": layername.Format(a.Name, a.Properties),
	}, nil
}

// === Layer Image Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("path", a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// OpaqueBoundsResult is the lci_opaque_bounds result.
type OpaqueBoundsResult struct {
	Bounds      geometry.Rect       `json:"bounds"`
	Transparent bool                `json:"transparent"`
	Preview     *imaging.CropResult `json:"preview,omitempty"`
}

type opaqueBoundsArgs struct {
	Path           string `json:"path"`
	IncludePreview bool   `json:"include_preview"`
}

func (s *Server) handleOpaqueBounds(args json.RawMessage) (interface{}, error) {
	var a opaqueBoundsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("path", a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	mask := geometry.NewMask(img)
	bounds := mask.OpaqueBounds()
	result := &OpaqueBoundsResult{
		Bounds:      geometry.RectFrom(bounds),
		Transparent: bounds == geometry.EmptyBounds && !mask.Opaque(0, 0),
	}
	if a.IncludePreview && !result.Transparent {
		preview, err := imaging.CropToPNG(img, bounds.Add(img.Bounds().Min), 1.0)
		if err != nil {
			return nil, err
		}
		result.Preview = preview
	}
	return result, nil
}

func (s *Server) handleMultiBounds(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireField("path", a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	rects := geometry.Decompose(img)
	if rects == nil {
		rects = []geometry.Rect{}
	}
	return map[string]interface{}{
		"rects": rects,
		"count": len(rects),
	}, nil
}
