package geometry

import (
	"image"
	"slices"
)

// Decompose covers the opaque pixels of img with axis-aligned rectangles.
//
// The rectangles start as one-pixel-high horizontal runs (InitialRuns), are
// merged with immediately following candidates (MergeAdjacent), then merged
// exhaustively (MergeAll). Both passes are order dependent and the output
// order is stable. A fully transparent image yields an empty slice.
func Decompose(img image.Image) []Rect {
	rects := InitialRuns(NewMask(img))
	rects = MergeAdjacent(rects)
	return MergeAll(rects)
}

// InitialRuns scans m in row-major order and emits one rectangle of height 1
// for every maximal horizontal run of opaque pixels.
func InitialRuns(m *Mask) []Rect {
	var rects []Rect
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if !m.Opaque(x, y) {
				continue
			}
			run := Rect{X: float64(x), Y: float64(y), Height: 1}
			for x < m.width && m.Opaque(x, y) {
				run.Width++
				x++
			}
			rects = append(rects, run)
		}
	}
	return rects
}

// MergeAdjacent folds each rectangle's immediate successors into it for as
// long as they merge, stopping at the first successor that does not. It is a
// partial pass; rects is modified in place and the shortened slice returned.
func MergeAdjacent(rects []Rect) []Rect {
	return mergePass(rects, false)
}

// MergeAll folds every later rectangle that merges into each rectangle,
// regardless of position. rects is modified in place and the shortened slice
// returned.
func MergeAll(rects []Rect) []Rect {
	return mergePass(rects, true)
}

func mergePass(rects []Rect, exhaustive bool) []Rect {
	for i := 0; i < len(rects); i++ {
		j := i + 1
		for j < len(rects) {
			if merge(rects[j], &rects[i]) {
				rects = slices.Delete(rects, j, j+1)
				continue
			}
			if !exhaustive {
				break
			}
			j++
		}
	}
	return rects
}

// merge tries to absorb rect into into and reports whether rect was consumed.
//
// Merging succeeds when one rectangle contains the other, or when both share
// the same column span (or row span) and their extents along the other axis
// touch or overlap. Corner contact and partial overlap never merge.
func merge(rect Rect, into *Rect) bool {
	if into.Contains(rect) {
		return true
	}
	if rect.Contains(*into) {
		*into = rect
		return true
	}
	if rect.X == into.X && rect.Width == into.Width &&
		rect.Y <= into.Bottom() && rect.Bottom() >= into.Y {
		y := min(rect.Y, into.Y)
		into.Height = max(rect.Bottom(), into.Bottom()) - y
		into.Y = y
		return true
	}
	if rect.Y == into.Y && rect.Height == into.Height &&
		rect.X <= into.Right() && rect.Right() >= into.X {
		x := min(rect.X, into.X)
		into.Width = max(rect.Right(), into.Right()) - x
		into.X = x
		return true
	}
	return false
}
