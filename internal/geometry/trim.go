package geometry

import "image"

// EmptyBounds is what OpaqueBounds returns for an image without opaque
// pixels.
var EmptyBounds = image.Rect(0, 0, 1, 1)

// OpaqueBounds returns the tightest rectangle containing every pixel of img
// with non-zero alpha, relative to img's top-left corner.
//
// Each edge is scanned inward independently until a column (left, right) or
// row (top, bottom) with at least one opaque pixel is found. When the image
// has no opaque pixel at all the result is EmptyBounds, a 1x1 rectangle at
// the origin.
func OpaqueBounds(img image.Image) image.Rectangle {
	return NewMask(img).OpaqueBounds()
}

// OpaqueBounds is the mask form of the package-level OpaqueBounds.
func (m *Mask) OpaqueBounds() image.Rectangle {
	left := 0
	for left < m.width && !m.columnOpaque(left) {
		left++
	}

	right := m.width
	for right > left && !m.columnOpaque(right-1) {
		right--
	}

	top := 0
	for top < m.height && !m.rowOpaque(top) {
		top++
	}

	bottom := m.height
	for bottom > top && !m.rowOpaque(bottom-1) {
		bottom--
	}

	if right-left == 0 || bottom-top == 0 {
		return EmptyBounds
	}
	return image.Rect(left, top, right, bottom)
}

func (m *Mask) columnOpaque(x int) bool {
	for y := 0; y < m.height; y++ {
		if m.Opaque(x, y) {
			return true
		}
	}
	return false
}

func (m *Mask) rowOpaque(y int) bool {
	for x := 0; x < m.width; x++ {
		if m.Opaque(x, y) {
			return true
		}
	}
	return false
}
