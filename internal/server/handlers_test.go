package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/lci-tools/internal/config"
	"github.com/ironsheep/lci-tools/internal/geometry"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// createTestImageFile writes a width x height PNG filled with c over the
// rectangle fill (the rest stays transparent) and returns its path.
func createTestImageFile(t *testing.T, dir, name string, width, height int, fill image.Rectangle, c color.NRGBA) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := fill.Min.Y; y < fill.Max.Y; y++ {
		for x := fill.Min.X; x < fill.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

const testManifest = `width: 4
height: 4
layers:
  - file: bg.png
    name: background
  - file: floor.png
    name: floor
    properties: {multiBounds: "", physicsGroup: terrain}
  - file: hero.png
    name: hero
    properties: {restrict: "", bounds: "0,0,1,1"}
    blend: multiply
`

// createTestProject writes a manifest with three layers and returns its path.
func createTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	createTestImageFile(t, dir, "bg.png", 4, 4, image.Rect(0, 0, 4, 4), blue)
	createTestImageFile(t, dir, "floor.png", 4, 4, image.Rect(0, 3, 4, 4), red)
	createTestImageFile(t, dir, "hero.png", 4, 4, image.Rect(1, 1, 3, 3), red)

	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

// callTool sends a tools/call request through handleRequest.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}

	resp := s.handleRequest(req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unpacks the JSON text content of a successful response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

// packTestProject builds the test project into an .lci file.
func packTestProject(t *testing.T, s *Server) string {
	t.Helper()
	manifest := createTestProject(t)
	out := filepath.Join(t.TempDir(), "doc.lci")

	var result map[string]interface{}
	decodeResult(t, callTool(t, s, "lci_pack", map[string]interface{}{
		"manifest": manifest,
		"output":   out,
	}), &result)

	if result["layers"] != float64(3) {
		t.Errorf("layers: got %v, want 3", result["layers"])
	}
	return out
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New(config.Settings{})
	imgPath := createTestImageFile(t, t.TempDir(), "a.png", 100, 80, image.Rect(0, 0, 100, 80), red)

	var info struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Format   string `json:"format"`
		HasAlpha bool   `json:"has_alpha"`
	}
	decodeResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if !info.HasAlpha {
		t.Error("NRGBA image should report alpha")
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(config.Settings{})
	missing := filepath.Join(t.TempDir(), "missing.png")

	tools := []string{"image_load", "lci_opaque_bounds", "lci_multibounds", "lci_inspect", "lci_flatten"}
	for _, name := range tools {
		t.Run(name, func(t *testing.T) {
			resp := callTool(t, s, name, map[string]interface{}{"path": missing})
			if resp.Error == nil {
				t.Fatal("Expected error for non-existent file")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New(config.Settings{})
	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})

	if resp.Error == nil {
		t.Fatal("Expected error for invalid tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "nonexistent_tool") {
		t.Errorf("Error data should name the tool, got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_MissingArguments(t *testing.T) {
	s := New(config.Settings{})

	tests := []struct {
		tool string
		args map[string]interface{}
	}{
		{"image_load", map[string]interface{}{}},
		{"lci_inspect", map[string]interface{}{}},
		{"lci_pack", map[string]interface{}{"manifest": "/a.yaml"}},
		{"lci_unpack", map[string]interface{}{"path": "/a.lci"}},
		{"lci_collision_query", map[string]interface{}{}},
		{"lci_format_layer_name", map[string]interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("Expected error for missing argument")
			}
			if data, _ := resp.Error.Data.(string); !strings.Contains(data, "missing required argument") {
				t.Errorf("Error data: got %v", resp.Error.Data)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(config.Settings{})
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid`),
	}

	resp := s.handleRequest(req)
	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_ParseLayerName(t *testing.T) {
	s := New(config.Settings{})

	tests := []struct {
		raw          string
		wantName     string
		wantDataFlag bool
		wantGroup    string
	}{
		{"hero|anchor=bottom_center|physicsGroup=actors", "hero", false, "actors"},
		{"defaults|restrict", "defaults", true, ""},
		{"// notes", "// notes", true, ""},
		{"spawn|placeholder=enemy", "spawn", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var result struct {
				Name        string `json:"name"`
				IsDataLayer bool   `json:"is_data_layer"`
				Properties  struct {
					PhysicsGroup *string `json:"physicsGroup"`
				} `json:"properties"`
			}
			decodeResult(t, callTool(t, s, "lci_parse_layer_name", map[string]interface{}{"name": tt.raw}), &result)

			if result.Name != tt.wantName {
				t.Errorf("name: got %q, want %q", result.Name, tt.wantName)
			}
			if result.IsDataLayer != tt.wantDataFlag {
				t.Errorf("is_data_layer: got %v, want %v", result.IsDataLayer, tt.wantDataFlag)
			}
			group := ""
			if result.Properties.PhysicsGroup != nil {
				group = *result.Properties.PhysicsGroup
			}
			if group != tt.wantGroup {
				t.Errorf("physicsGroup: got %q, want %q", group, tt.wantGroup)
			}
		})
	}
}

func TestHandleToolsCall_ParseLayerName_Invalid(t *testing.T) {
	s := New(config.Settings{})
	resp := callTool(t, s, "lci_parse_layer_name", map[string]interface{}{"name": "hero||anchor=center"})
	if resp.Error == nil {
		t.Fatal("Expected error for blank property segment")
	}
}

func TestHandleToolsCall_FormatLayerName(t *testing.T) {
	s := New(config.Settings{})

	var result struct {
		RawName string `json:"raw_name"`
	}
	decodeResult(t, callTool(t, s, "lci_format_layer_name", map[string]interface{}{
		"name": "crate",
		"properties": map[string]interface{}{
			"restrict":     true,
			"physicsGroup": "props",
		},
	}), &result)

	if !strings.HasPrefix(result.RawName, "crate|") {
		t.Fatalf("raw_name: got %q", result.RawName)
	}

	// Feeding the formatted name back through the parser yields the same
	// properties.
	var parsed struct {
		Name       string `json:"name"`
		Properties struct {
			Restrict     bool    `json:"restrict"`
			PhysicsGroup *string `json:"physicsGroup"`
		} `json:"properties"`
	}
	decodeResult(t, callTool(t, s, "lci_parse_layer_name", map[string]interface{}{"name": result.RawName}), &parsed)
	if parsed.Name != "crate" || !parsed.Properties.Restrict {
		t.Errorf("parsed: got %+v", parsed)
	}
	if parsed.Properties.PhysicsGroup == nil || *parsed.Properties.PhysicsGroup != "props" {
		t.Errorf("physicsGroup: got %v", parsed.Properties.PhysicsGroup)
	}
}

func TestHandleToolsCall_FormatLayerName_NoProperties(t *testing.T) {
	s := New(config.Settings{})

	var result struct {
		RawName string `json:"raw_name"`
	}
	decodeResult(t, callTool(t, s, "lci_format_layer_name", map[string]interface{}{"name": "sky"}), &result)
	if result.RawName != "sky" {
		t.Errorf("raw_name: got %q, want sky", result.RawName)
	}
}

func TestHandleToolsCall_OpaqueBounds(t *testing.T) {
	s := New(config.Settings{})
	dir := t.TempDir()
	imgPath := createTestImageFile(t, dir, "shape.png", 10, 8, image.Rect(2, 3, 6, 5), red)

	var result OpaqueBoundsResult
	decodeResult(t, callTool(t, s, "lci_opaque_bounds", map[string]interface{}{
		"path":            imgPath,
		"include_preview": true,
	}), &result)

	want := geometry.Rect{X: 2, Y: 3, Width: 4, Height: 2}
	if result.Bounds != want {
		t.Errorf("bounds: got %+v, want %+v", result.Bounds, want)
	}
	if result.Transparent {
		t.Error("image with opaque pixels reported transparent")
	}
	if result.Preview == nil {
		t.Fatal("preview missing")
	}
	if result.Preview.Width != 4 || result.Preview.Height != 2 {
		t.Errorf("preview size: got %dx%d, want 4x2", result.Preview.Width, result.Preview.Height)
	}
}

func TestHandleToolsCall_OpaqueBounds_Transparent(t *testing.T) {
	s := New(config.Settings{})
	imgPath := createTestImageFile(t, t.TempDir(), "empty.png", 5, 5, image.Rectangle{}, red)

	var result OpaqueBoundsResult
	decodeResult(t, callTool(t, s, "lci_opaque_bounds", map[string]interface{}{
		"path":            imgPath,
		"include_preview": true,
	}), &result)

	if !result.Transparent {
		t.Error("fully transparent image not reported")
	}
	if result.Bounds != (geometry.Rect{Width: 1, Height: 1}) {
		t.Errorf("bounds: got %+v, want 1x1 at origin", result.Bounds)
	}
	if result.Preview != nil {
		t.Error("transparent image should have no preview")
	}
}

func TestHandleToolsCall_MultiBounds(t *testing.T) {
	s := New(config.Settings{})
	imgPath := createTestImageFile(t, t.TempDir(), "block.png", 6, 6, image.Rect(1, 1, 4, 3), red)

	var result struct {
		Rects []geometry.Rect `json:"rects"`
		Count int             `json:"count"`
	}
	decodeResult(t, callTool(t, s, "lci_multibounds", map[string]interface{}{"path": imgPath}), &result)

	want := geometry.Rect{X: 1, Y: 1, Width: 3, Height: 2}
	if result.Count != 1 || len(result.Rects) != 1 || result.Rects[0] != want {
		t.Errorf("got %+v, want [%+v]", result.Rects, want)
	}
}

func TestHandleToolsCall_MultiBounds_Transparent(t *testing.T) {
	s := New(config.Settings{})
	imgPath := createTestImageFile(t, t.TempDir(), "empty.png", 3, 3, image.Rectangle{}, red)

	var result struct {
		Rects []geometry.Rect `json:"rects"`
		Count int             `json:"count"`
	}
	decodeResult(t, callTool(t, s, "lci_multibounds", map[string]interface{}{"path": imgPath}), &result)

	if result.Rects == nil || result.Count != 0 {
		t.Errorf("got %+v, want an empty list", result)
	}
}

func TestHandleToolsCall_PackAndInspect(t *testing.T) {
	s := New(config.Settings{})
	out := packTestProject(t, s)

	var result InspectResult
	decodeResult(t, callTool(t, s, "lci_inspect", map[string]interface{}{
		"path":           out,
		"include_colors": true,
	}), &result)

	if result.Width != 4 || result.Height != 4 {
		t.Errorf("size: got %dx%d, want 4x4", result.Width, result.Height)
	}
	if len(result.Layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(result.Layers))
	}

	hero := result.Layers[2]
	if hero.Name != "hero" {
		t.Errorf("name: got %q", hero.Name)
	}
	if hero.BlendName != "multiply" || hero.BlendMode != 2 {
		t.Errorf("blend: got %s (%d), want multiply (2)", hero.BlendName, hero.BlendMode)
	}
	// restrict crops the 2x2 block out of the 4x4 canvas.
	if hero.Offset != (pixelPoint{X: 1, Y: 1}) || hero.ContentSize != (pixelPoint{X: 2, Y: 2}) {
		t.Errorf("hero offset %+v content %+v", hero.Offset, hero.ContentSize)
	}
	if hero.Color == nil || hero.Color.Hex != "#ff0000" {
		t.Errorf("hero color: got %+v", hero.Color)
	}

	bg := result.Layers[0]
	if bg.ContentSize != (pixelPoint{X: 4, Y: 4}) {
		t.Errorf("background content: got %+v", bg.ContentSize)
	}
	if bg.Color == nil || bg.Color.Coverage != 100 {
		t.Errorf("background color: got %+v", bg.Color)
	}
}

func TestHandleToolsCall_Inspect_WithoutColors(t *testing.T) {
	s := New(config.Settings{})
	out := packTestProject(t, s)

	var result InspectResult
	decodeResult(t, callTool(t, s, "lci_inspect", map[string]interface{}{"path": out}), &result)

	for _, l := range result.Layers {
		if l.Color != nil {
			t.Errorf("layer %s: color reported without include_colors", l.Name)
		}
	}
}

func TestHandleToolsCall_Unpack(t *testing.T) {
	s := New(config.Settings{Workers: 2})
	out := packTestProject(t, s)
	dir := filepath.Join(t.TempDir(), "layers")

	var result struct {
		Files    []string `json:"files"`
		Manifest string   `json:"manifest"`
	}
	decodeResult(t, callTool(t, s, "lci_unpack", map[string]interface{}{
		"path":       out,
		"output_dir": dir,
	}), &result)

	if len(result.Files) != 3 {
		t.Fatalf("files: got %v", result.Files)
	}
	if _, err := os.Stat(result.Manifest); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}

	// The unpacked manifest packs back into an equivalent document.
	repacked := filepath.Join(t.TempDir(), "again.lci")
	decodeResult(t, callTool(t, s, "lci_pack", map[string]interface{}{
		"manifest": result.Manifest,
		"output":   repacked,
	}), &map[string]interface{}{})

	var first, second InspectResult
	decodeResult(t, callTool(t, s, "lci_inspect", map[string]interface{}{"path": out}), &first)
	decodeResult(t, callTool(t, s, "lci_inspect", map[string]interface{}{"path": repacked}), &second)
	for i := range first.Layers {
		a, b := first.Layers[i], second.Layers[i]
		if a.RawName != b.RawName || a.Offset != b.Offset || a.Position != b.Position || a.BlendMode != b.BlendMode {
			t.Errorf("layer %d: got %+v, want %+v", i, b, a)
		}
	}
}

func TestHandleToolsCall_Flatten(t *testing.T) {
	s := New(config.Settings{})
	out := packTestProject(t, s)
	flatPath := filepath.Join(t.TempDir(), "flat.png")

	var result map[string]interface{}
	decodeResult(t, callTool(t, s, "lci_flatten", map[string]interface{}{
		"path":   out,
		"output": flatPath,
	}), &result)

	if result["width"] != float64(4) || result["height"] != float64(4) {
		t.Errorf("size: got %vx%v", result["width"], result["height"])
	}

	var info struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	decodeResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": flatPath}), &info)
	if info.Width != 4 || info.Height != 4 {
		t.Errorf("written image: got %dx%d", info.Width, info.Height)
	}
}

func TestHandleToolsCall_Flatten_Inline(t *testing.T) {
	s := New(config.Settings{})
	out := packTestProject(t, s)

	var result struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	decodeResult(t, callTool(t, s, "lci_flatten", map[string]interface{}{
		"path":  out,
		"scale": 2.0,
	}), &result)

	if result.ImageBase64 == "" {
		t.Error("no image returned")
	}
	if result.MimeType != "image/png" {
		t.Errorf("mime type: got %s", result.MimeType)
	}
	if result.Width != 8 || result.Height != 8 {
		t.Errorf("region: got %dx%d, want 8x8 at scale 2", result.Width, result.Height)
	}
}

func TestHandleToolsCall_CollisionQuery(t *testing.T) {
	s := New(config.Settings{})
	out := packTestProject(t, s)

	tests := []struct {
		name string
		args map[string]interface{}
		want []string
	}{
		{"all", map[string]interface{}{}, []string{"floor", "hero"}},
		{"point on floor", map[string]interface{}{"point": map[string]interface{}{"x": 2.5, "y": 3.5}}, []string{"floor"}},
		{"point in air", map[string]interface{}{"point": map[string]interface{}{"x": 0.5, "y": 0.5}}, []string{}},
		{"excluded group", map[string]interface{}{"point": map[string]interface{}{"x": 2.5, "y": 3.5}, "exclude_group": "terrain"}, []string{}},
		{"rect", map[string]interface{}{"rect": map[string]interface{}{"x": 0, "y": 2, "width": 4, "height": 2}}, []string{"floor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["path"] = out

			var result struct {
				Hits []struct {
					Layer string `json:"layer"`
					Group string `json:"group"`
				} `json:"hits"`
				Total  int      `json:"total"`
				Groups []string `json:"groups"`
			}
			decodeResult(t, callTool(t, s, "lci_collision_query", tt.args), &result)

			if result.Total != 2 {
				t.Errorf("total: got %d, want 2", result.Total)
			}
			if len(result.Groups) != 1 || result.Groups[0] != "terrain" {
				t.Errorf("groups: got %v", result.Groups)
			}
			got := make([]string, 0, len(result.Hits))
			for _, h := range result.Hits {
				got = append(got, h.Layer)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("hits: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleToolsCall_CollisionQuery_PointAndRect(t *testing.T) {
	s := New(config.Settings{})
	resp := callTool(t, s, "lci_collision_query", map[string]interface{}{
		"path":  "/doc.lci",
		"point": map[string]interface{}{"x": 1, "y": 1},
		"rect":  map[string]interface{}{"x": 0, "y": 0, "width": 1, "height": 1},
	})
	if resp.Error == nil {
		t.Fatal("Expected error when both point and rect are given")
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(config.Settings{})

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(config.Settings{})

	_, err := s.executeTool("image_load", json.RawMessage(`{invalid`))
	if err == nil {
		t.Error("executeTool should fail for invalid JSON")
	}
}

func TestExecuteTool_EmptyArguments(t *testing.T) {
	s := New(config.Settings{})

	result, err := s.executeTool("lci_parse_layer_name", nil)
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if result == nil {
		t.Error("executeTool returned nil result")
	}
}
