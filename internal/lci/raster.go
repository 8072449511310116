package lci

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/lci-tools/internal/blendmode"
	"github.com/ironsheep/lci-tools/internal/layername"
)

// Raster is an in-memory layered document. Load returns one and Save accepts
// one through the Document interface.
type Raster struct {
	width  int
	height int
	layers []*RasterLayer
}

// NewRaster creates an empty document of the given size.
func NewRaster(width, height int) *Raster {
	return &Raster{width: width, height: height}
}

// Size implements Document.
func (r *Raster) Size() (int, int) { return r.width, r.height }

// Layers implements Document.
func (r *Raster) Layers() []Layer {
	out := make([]Layer, len(r.layers))
	for i, l := range r.layers {
		out[i] = l
	}
	return out
}

// RasterLayers returns the concrete layers in stacking order.
func (r *Raster) RasterLayers() []*RasterLayer { return r.layers }

// Add appends a layer on top of the stack.
func (r *Raster) Add(l *RasterLayer) { r.layers = append(r.layers, l) }

// NewLayer appends and returns a transparent full-size layer.
func (r *Raster) NewLayer(name string) *RasterLayer {
	l := NewRasterLayer(name, imaging.New(r.width, r.height, color.Transparent))
	r.Add(l)
	return l
}

// Lookup returns the first layer whose bare name is name.
func (r *Raster) Lookup(name string) (*RasterLayer, bool) {
	for _, l := range r.layers {
		if layername.Name(l.name) == name {
			return l, true
		}
	}
	return nil, false
}

// RasterLayer is a layer backed by an *image.NRGBA.
type RasterLayer struct {
	name    string
	visible bool
	opacity uint8
	mode    blendmode.Mode
	img     *image.NRGBA
}

// NewRasterLayer returns a visible, fully opaque, Normal-blended layer.
func NewRasterLayer(name string, img *image.NRGBA) *RasterLayer {
	return &RasterLayer{
		name:    name,
		visible: true,
		opacity: 255,
		mode:    blendmode.Normal,
		img:     img,
	}
}

func (l *RasterLayer) Name() string { return l.name }
func (l *RasterLayer) Visible() bool { return l.visible }
func (l *RasterLayer) Opacity() uint8 { return l.opacity }
func (l *RasterLayer) BlendMode() blendmode.Mode { return l.mode }
func (l *RasterLayer) Image() image.Image { return l.img }

// NRGBA returns the backing image for direct pixel access.
func (l *RasterLayer) NRGBA() *image.NRGBA { return l.img }

func (l *RasterLayer) SetName(name string) { l.name = name }
func (l *RasterLayer) SetVisible(v bool) { l.visible = v }
func (l *RasterLayer) SetOpacity(o uint8) { l.opacity = o }
func (l *RasterLayer) SetBlendMode(m blendmode.Mode) { l.mode = m }
func (l *RasterLayer) SetImage(img *image.NRGBA) { l.img = img }
