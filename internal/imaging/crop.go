package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult contains a cropped region encoded as PNG.
type CropResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropToPNG extracts rect from img and encodes it as base64 PNG. rect is in
// the image's own coordinates. A scale other than 1 resizes the crop with
// Lanczos resampling.
func CropToPNG(img image.Image, rect image.Rectangle, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", rect)
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, bounds)
	}

	cropped := imaging.Crop(img, rect)
	if scale != 1.0 && scale > 0 {
		w := max(1, int(float64(cropped.Bounds().Dx())*scale))
		h := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X:           rect.Min.X,
		Y:           rect.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
