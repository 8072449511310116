// Package compose flattens an LCI document into a single image.
//
// Layers are composited bottom to top. Hidden layers and data layers are
// skipped. Each layer's alpha is scaled by its opacity before it is blended
// onto the canvas with the function matching its blend mode.
package compose

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/lci-tools/internal/blendmode"
	"github.com/ironsheep/lci-tools/internal/layername"
	"github.com/ironsheep/lci-tools/internal/lci"
)

// BlendFunc composites fg over bg and returns a new image.
type BlendFunc func(bg, fg image.Image) *image.RGBA

var blendFuncs = map[blendmode.Mode]BlendFunc{
	blendmode.Normal:     blend.Normal,
	blendmode.Multiply:   blend.Multiply,
	blendmode.Additive:   blend.Add,
	blendmode.ColorBurn:  blend.ColorBurn,
	blendmode.ColorDodge: blend.ColorDodge,
	blendmode.Overlay:    blend.Overlay,
	blendmode.Difference: blend.Difference,
	blendmode.Lighten:    blend.Lighten,
	blendmode.Darken:     blend.Darken,
	blendmode.Screen:     blend.Screen,
}

// FuncFor returns the blend function for m. Modes that can not be stored in
// an LCI document have none.
func FuncFor(m blendmode.Mode) (BlendFunc, error) {
	fn, ok := blendFuncs[m]
	if !ok {
		return nil, fmt.Errorf("%w: %s", blendmode.ErrUnsupportedBlendMode, m)
	}
	return fn, nil
}

// Flatten composites the visible artwork layers of doc onto a transparent
// canvas the size of the document.
func Flatten(doc lci.Document) (*image.RGBA, error) {
	width, height := doc.Size()
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	defaults, err := lci.DefaultProperties(doc.Layers())
	if err != nil {
		return nil, fmt.Errorf("failed to parse defaults layer: %w", err)
	}
	for _, l := range doc.Layers() {
		if !Renders(l, defaults) {
			continue
		}
		fn, err := FuncFor(l.BlendMode())
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", layername.Name(l.Name()), err)
		}
		canvas = fn(canvas, fitLayer(l.Image(), width, height, l.Opacity()))
	}
	return canvas, nil
}

// Renders reports whether l contributes pixels to a flattened image.
// defaults holds the properties of the document's defaults layer, as
// returned by lci.DefaultProperties, and may be nil. A name that fails to
// parse is treated as artwork; only the bare name and the data-only flags
// decide.
func Renders(l lci.Layer, defaults *layername.Properties) bool {
	if !l.Visible() || l.Opacity() == 0 {
		return false
	}
	props, err := layername.Parse(l.Name(), defaults, nil)
	if err != nil {
		props = nil
	}
	return !lci.IsDataLayer(layername.Name(l.Name()), props)
}

// fitLayer rebases img to the document origin, clips it to the document and
// scales its alpha by opacity.
func fitLayer(img image.Image, width, height int, opacity uint8) *image.NRGBA {
	b := img.Bounds()
	out := imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Min.Y+height))
	if out.Bounds().Dx() != width || out.Bounds().Dy() != height {
		out = imaging.Paste(imaging.New(width, height, color.Transparent), out, image.Point{})
	}
	if opacity == 255 {
		return out
	}
	return imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
		c.A = uint8(uint16(c.A) * uint16(opacity) / 255)
		return c
	})
}
