package lci

import (
	"image"
	"strings"

	"github.com/ironsheep/lci-tools/internal/blendmode"
	"github.com/ironsheep/lci-tools/internal/geometry"
	"github.com/ironsheep/lci-tools/internal/layername"
)

const (
	// Signature prefixes every LCI file.
	Signature = ".LCI"

	// ImageURIPrefix prefixes every layer image payload.
	ImageURIPrefix = "data:image/png;base64,"

	// DefaultsLayerName names the layer whose properties seed all others.
	DefaultsLayerName = "defaults"

	commentPrefix = "//"
)

// Document is the host-side view of a layered raster that Save reads.
type Document interface {
	// Size returns the document width and height in pixels.
	Size() (width, height int)

	// Layers returns the layers in stacking order.
	Layers() []Layer
}

// Layer is one host layer. Image is expected to cover the full document;
// coordinates are taken relative to its bounds.
type Layer interface {
	Name() string
	Visible() bool
	Opacity() uint8
	BlendMode() blendmode.Mode
	Image() image.Image
}

// DocumentData is the JSON body of an LCI file.
type DocumentData struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Layers []LayerData `json:"layers"`
}

// LayerData is the serialized form of one layer.
type LayerData struct {
	// RawName is the unparsed layer name including its property segments.
	RawName string `json:"rawName"`

	// Name is the bare name (first segment of RawName).
	Name string `json:"name"`

	// Image is the cropped layer pixels as a PNG data URI.
	Image string `json:"image"`

	// Position is the document-space placement after anchor and offset.
	Position geometry.Point `json:"position"`

	// IsDataLayer marks layers that carry metadata rather than artwork.
	IsDataLayer bool `json:"isDataLayer"`

	Properties *layername.Properties `json:"properties"`

	Visible   bool             `json:"visible"`
	Opacity   uint8            `json:"opacity"`
	BlendMode blendmode.Target `json:"blendMode"`

	// OffsetX and OffsetY are the crop origin in layer space.
	OffsetX int `json:"offsetX"`
	OffsetY int `json:"offsetY"`
}

// ContentRect returns the rectangle the layer pixels occupy in layer space,
// given the decoded payload size.
func (ld *LayerData) ContentRect(width, height int) image.Rectangle {
	return image.Rect(ld.OffsetX, ld.OffsetY, ld.OffsetX+width, ld.OffsetY+height)
}

// IsDataLayer reports whether a layer with the given bare name and properties
// carries only metadata: the defaults layer, "//" comment layers,
// placeholders and multi-bounds layers.
func IsDataLayer(name string, p *layername.Properties) bool {
	if name == DefaultsLayerName || strings.HasPrefix(name, commentPrefix) {
		return true
	}
	return p != nil && (p.Placeholder != nil || p.MultiBounds != nil)
}
