package lci

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// EncodeImageURI crops img to rect (relative to img's top-left corner) and
// returns it as a base64 PNG data URI.
func EncodeImageURI(img image.Image, rect image.Rectangle, level png.CompressionLevel) (string, error) {
	cropped := imaging.Crop(img, rect.Add(img.Bounds().Min))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG, imaging.PNGCompressionLevel(level)); err != nil {
		return "", fmt.Errorf("%w: png: %v", ErrEncoding, err)
	}
	return ImageURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeImageURI decodes a PNG data URI produced by EncodeImageURI.
func DecodeImageURI(uri string) (image.Image, error) {
	payload, ok := strings.CutPrefix(uri, ImageURIPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrMalformedImage, ImageURIPrefix)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMalformedImage, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: png: %v", ErrMalformedImage, err)
	}
	return img, nil
}
