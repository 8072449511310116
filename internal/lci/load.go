package lci

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/lci-tools/internal/blendmode"
)

// utf8BOM is skipped if present; some writers emit it before the signature.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads an LCI document from r and rebuilds its layers at full size.
// r is not closed.
func Load(r io.Reader, opts ...Option) (*Raster, error) {
	o := newOptions(opts)

	dd, err := Decode(r)
	if err != nil {
		return nil, err
	}

	doc := NewRaster(dd.Width, dd.Height)
	for i := range dd.Layers {
		ld := &dd.Layers[i]

		img, err := ExtractLayer(ld, dd.Width, dd.Height)
		if err != nil {
			return nil, err
		}

		mode, err := blendmode.FromTarget(ld.BlendMode)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", ld.RawName, err)
		}

		layer := NewRasterLayer(ld.RawName, img)
		layer.SetVisible(ld.Visible)
		layer.SetOpacity(ld.Opacity)
		layer.SetBlendMode(mode)
		doc.Add(layer)

		o.report(i+1, len(dd.Layers))
	}
	return doc, nil
}

// Decode reads the signature and JSON body from r without decoding any layer
// pixels. Only the first line of input is consumed by the parser, although
// buffering may read further ahead from r.
func Decode(r io.Reader) (*DocumentData, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read LCI document: %w", err)
	}
	line = bytes.TrimPrefix(line, utf8BOM)
	line = bytes.TrimRight(line, "\r\n")

	body, ok := bytes.CutPrefix(line, []byte(Signature))
	if !ok {
		return nil, ErrInvalidSignature
	}

	var dd DocumentData
	if err := json.Unmarshal(body, &dd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if dd.Width <= 0 || dd.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrMalformedDocument, dd.Width, dd.Height)
	}
	return &dd, nil
}

// ExtractLayer decodes the payload of ld and pastes it into a transparent
// width x height canvas at the layer's crop origin.
func ExtractLayer(ld *LayerData, width, height int) (*image.NRGBA, error) {
	img, err := DecodeImageURI(ld.Image)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", ld.RawName, err)
	}
	canvas := imaging.New(width, height, color.Transparent)
	return imaging.Paste(canvas, img, image.Pt(ld.OffsetX, ld.OffsetY)), nil
}
