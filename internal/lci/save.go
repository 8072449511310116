package lci

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/ironsheep/lci-tools/internal/blendmode"
	"github.com/ironsheep/lci-tools/internal/geometry"
	"github.com/ironsheep/lci-tools/internal/layername"
)

// Save encodes doc and writes it to w as a single line: the signature
// followed by the JSON document. w is not closed.
func Save(w io.Writer, doc Document, opts ...Option) error {
	dd, err := Encode(doc, opts...)
	if err != nil {
		return err
	}
	return Write(w, dd)
}

// Write serializes an already encoded document to w.
func Write(w io.Writer, dd *DocumentData) error {
	body, err := json.Marshal(dd)
	if err != nil {
		return fmt.Errorf("%w: json: %v", ErrEncoding, err)
	}

	buf := make([]byte, 0, len(Signature)+len(body))
	buf = append(buf, Signature...)
	buf = append(buf, body...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: write: %v", ErrEncoding, err)
	}
	return nil
}

// Encode builds the serializable form of doc without writing it.
func Encode(doc Document, opts ...Option) (*DocumentData, error) {
	o := newOptions(opts)

	if err := Validate(doc); err != nil {
		return nil, err
	}

	width, height := doc.Size()
	layers := doc.Layers()

	defaults, err := DefaultProperties(layers)
	if err != nil {
		return nil, err
	}

	dd := &DocumentData{
		Width:  width,
		Height: height,
		Layers: make([]LayerData, 0, len(layers)),
	}
	for i, l := range layers {
		ld, err := encodeLayer(l, defaults, width, height, o)
		if err != nil {
			return nil, err
		}
		dd.Layers = append(dd.Layers, *ld)
		o.report(i+1, len(layers))
	}
	return dd, nil
}

// Validate checks that the document has a positive size and that every layer
// has a unique bare name.
func Validate(doc Document) error {
	if w, h := doc.Size(); w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	used := make(map[string]bool)
	for _, l := range doc.Layers() {
		name := layername.Name(l.Name())
		if used[name] {
			return fmt.Errorf("%w: %q; layers must have unique names", ErrDuplicateLayerName, name)
		}
		used[name] = true
	}
	return nil
}

// DefaultProperties parses the "defaults" layer, if any, without
// inheritance. The result is nil when there is no defaults layer.
func DefaultProperties(layers []Layer) (*layername.Properties, error) {
	for _, l := range layers {
		if layername.Name(l.Name()) == DefaultsLayerName {
			return layername.Parse(l.Name(), nil, l.Image())
		}
	}
	return nil, nil
}

func encodeLayer(l Layer, defaults *layername.Properties, width, height int, o *options) (*LayerData, error) {
	raw := l.Name()
	img := l.Image()

	props, err := layername.Parse(raw, defaults, img)
	if err != nil {
		return nil, err
	}

	ld := &LayerData{
		RawName:    raw,
		Name:       layername.Name(raw),
		Visible:    l.Visible(),
		Opacity:    l.Opacity(),
		Properties: props,
	}
	ld.IsDataLayer = IsDataLayer(ld.Name, props)

	content := image.Rect(0, 0, width, height)
	if props.Restrict {
		content = geometry.OpaqueBounds(img)
	}
	ld.OffsetX = content.Min.X
	ld.OffsetY = content.Min.Y
	ld.Position = position(content, props)

	ld.Image, err = EncodeImageURI(img, content, o.compression)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", ld.Name, err)
	}

	ld.BlendMode, err = blendmode.ToTarget(l.BlendMode())
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", ld.Name, err)
	}

	return ld, nil
}

// position places the layer in document space. The anchor is first snapped
// to a whole pixel of the content size; the snapped value is written back
// into props so the stored anchor matches the stored position.
func position(content image.Rectangle, props *layername.Properties) geometry.Point {
	pos := geometry.Point{X: float64(content.Min.X), Y: float64(content.Min.Y)}

	if a := props.Anchor; a != nil {
		w, h := float64(content.Dx()), float64(content.Dy())
		if w > 0 {
			a.X = math.Floor(w*a.X) / w
		}
		if h > 0 {
			a.Y = math.Floor(h*a.Y) / h
		}
		pos.X += w * a.X
		pos.Y += h * a.Y
	}
	if off := props.Offset; off != nil {
		pos.X -= off.X
		pos.Y -= off.Y
	}
	return pos
}
