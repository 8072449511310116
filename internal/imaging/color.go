package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/lucasb-eyer/go-colorful"
)

// RGBAColor is a non-premultiplied 8-bit colour.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor is a colour in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorSummary describes the visible pixels of a layer.
type ColorSummary struct {
	// Hex is the alpha-weighted average colour as "#rrggbb". Empty when no
	// pixel is visible.
	Hex  string    `json:"hex"`
	RGBA RGBAColor `json:"rgba"`
	HSL  HSLColor  `json:"hsl"`

	// OpaquePixels counts pixels with non-zero alpha.
	OpaquePixels int `json:"opaque_pixels"`

	// Coverage is OpaquePixels as a percentage of all pixels.
	Coverage float64 `json:"coverage"`
}

// LayerColor averages the visible pixels of img, weighting each pixel by its
// alpha. The reported alpha is the mean over the visible pixels.
func LayerColor(img image.Image) *ColorSummary {
	src := clone.AsShallowRGBA(img)
	b := src.Bounds()
	total := b.Dx() * b.Dy()

	var sumR, sumG, sumB, sumA float64
	count := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := src.PixOffset(x, y)
			a := src.Pix[i+3]
			if a == 0 {
				continue
			}
			// Pix is premultiplied, so the weighted sum needs no multiply.
			sumR += float64(src.Pix[i])
			sumG += float64(src.Pix[i+1])
			sumB += float64(src.Pix[i+2])
			sumA += float64(a)
			count++
		}
	}

	summary := &ColorSummary{OpaquePixels: count}
	if total > 0 {
		summary.Coverage = math.Round(float64(count)/float64(total)*10000) / 100
	}
	if count == 0 {
		return summary
	}

	avg := color.NRGBA{
		R: uint8(math.Round(sumR / sumA * 255)),
		G: uint8(math.Round(sumG / sumA * 255)),
		B: uint8(math.Round(sumB / sumA * 255)),
		A: uint8(math.Round(sumA / float64(count))),
	}
	summary.RGBA = RGBAColor{R: avg.R, G: avg.G, B: avg.B, A: avg.A}

	c := colorful.Color{R: float64(avg.R) / 255, G: float64(avg.G) / 255, B: float64(avg.B) / 255}
	summary.Hex = c.Hex()
	h, s, l := c.Hsl()
	summary.HSL = HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
	return summary
}
