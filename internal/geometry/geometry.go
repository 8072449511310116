package geometry

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
)

// Point is a 2D coordinate. Depending on context it holds a normalized anchor
// (0-1 fractions of a size), a pixel offset, or a document position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle. The values are integral in practice but
// kept as floats to match the document model.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFrom converts an image rectangle.
func RectFrom(r image.Rectangle) Rect {
	return Rect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// Image converts r to an image rectangle, truncating fractional edges.
func (r Rect) Image() image.Rectangle {
	x, y := int(math.Floor(r.X)), int(math.Floor(r.Y))
	return image.Rect(x, y, x+int(r.Width), y+int(r.Height))
}

// Right returns the exclusive right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Contains reports whether o lies entirely inside r. Edges may coincide.
func (r Rect) Contains(o Rect) bool {
	return r.X <= o.X && r.Right() >= o.Right() &&
		r.Y <= o.Y && r.Bottom() >= o.Bottom()
}

// ContainsPoint reports whether (x, y) falls inside r. Right and bottom edges
// are exclusive.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Mask is a read-only alpha view of an image, rebased so that (0,0) is the
// top-left pixel of the source bounds.
type Mask struct {
	rgba   *image.RGBA
	origin image.Point
	width  int
	height int
}

// NewMask builds a mask over img. *image.RGBA sources are read in place;
// everything else is converted once.
func NewMask(img image.Image) *Mask {
	b := img.Bounds()
	return &Mask{
		rgba:   clone.AsShallowRGBA(img),
		origin: b.Min,
		width:  b.Dx(),
		height: b.Dy(),
	}
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// Alpha returns the alpha value at (x, y). Out of range coordinates are
// transparent.
func (m *Mask) Alpha(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0
	}
	return m.rgba.Pix[m.rgba.PixOffset(x+m.origin.X, y+m.origin.Y)+3]
}

// Opaque reports whether the pixel at (x, y) has non-zero alpha.
func (m *Mask) Opaque(x, y int) bool {
	return m.Alpha(x, y) != 0
}
