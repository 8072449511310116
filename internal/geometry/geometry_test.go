package geometry

import (
	"image"
	"image/color"
	"reflect"
	"testing"
)

// maskImage builds an NRGBA image from rows of 'X' (opaque) and '.' (clear).
func maskImage(rows ...string) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, ch := range row {
			if ch == 'X' {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
			}
		}
	}
	return img
}

// coverage counts how many rectangles cover each pixel.
func coverage(w, h int, rects []Rect) [][]int {
	grid := make([][]int, h)
	for y := range grid {
		grid[y] = make([]int, w)
	}
	for _, r := range rects {
		for y := int(r.Y); y < int(r.Bottom()); y++ {
			for x := int(r.X); x < int(r.Right()); x++ {
				grid[y][x]++
			}
		}
	}
	return grid
}

func assertExactCover(t *testing.T, img *image.NRGBA, rects []Rect) {
	t.Helper()
	b := img.Bounds()
	grid := coverage(b.Dx(), b.Dy(), rects)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			want := 0
			if img.NRGBAAt(x, y).A != 0 {
				want = 1
			}
			if grid[y][x] != want {
				t.Errorf("pixel (%d,%d) covered %d times, want %d", x, y, grid[y][x], want)
			}
		}
	}
}

func TestOpaqueBounds_FullyTransparent(t *testing.T) {
	sizes := []image.Rectangle{
		image.Rect(0, 0, 1, 1),
		image.Rect(0, 0, 10, 10),
		image.Rect(0, 0, 37, 5),
	}
	for _, r := range sizes {
		got := OpaqueBounds(image.NewNRGBA(r))
		if got != image.Rect(0, 0, 1, 1) {
			t.Errorf("%v: got %v, want 1x1 sentinel at origin", r, got)
		}
	}
}

func TestOpaqueBounds_EmptyImage(t *testing.T) {
	got := OpaqueBounds(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	if got != image.Rect(0, 0, 1, 1) {
		t.Errorf("got %v, want 1x1 sentinel", got)
	}
}

func TestOpaqueBounds_SinglePixel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	img.SetNRGBA(2, 3, color.NRGBA{A: 1})

	got := OpaqueBounds(img)
	want := image.Rect(2, 3, 3, 4)
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if r := RectFrom(got); r != (Rect{X: 2, Y: 3, Width: 1, Height: 1}) {
		t.Errorf("RectFrom: got %+v", r)
	}
}

func TestOpaqueBounds_Shape(t *testing.T) {
	img := maskImage(
		"......",
		"..X...",
		".XXX..",
		"...X..",
		"......",
	)
	got := OpaqueBounds(img)
	want := image.Rect(1, 1, 4, 4)
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestOpaqueBounds_OffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 15, 15))
	img.SetNRGBA(7, 8, color.NRGBA{A: 255})

	got := OpaqueBounds(img)
	want := image.Rect(2, 3, 3, 4)
	if got != want {
		t.Errorf("got %v, want %v (relative to image origin)", got, want)
	}
}

func TestOpaqueBounds_RGBASubImage(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 20, 20))
	full.SetRGBA(12, 14, color.RGBA{A: 255})
	sub := full.SubImage(image.Rect(10, 10, 20, 20))

	got := OpaqueBounds(sub)
	want := image.Rect(2, 4, 3, 5)
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInitialRuns(t *testing.T) {
	img := maskImage(
		"XX.XX",
		".XXX.",
	)
	got := InitialRuns(NewMask(img))
	want := []Rect{
		{X: 0, Y: 0, Width: 2, Height: 1},
		{X: 3, Y: 0, Width: 2, Height: 1},
		{X: 1, Y: 1, Width: 3, Height: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDecompose_SolidBlock(t *testing.T) {
	img := maskImage("XXX", "XXX", "XXX")
	got := Decompose(img)

	if len(got) == 0 || len(got) > 3 {
		t.Fatalf("got %d rects, want between 1 and 3", len(got))
	}
	assertExactCover(t, img, got)

	// Runs share a column span and touch, so pass A folds them into one.
	want := []Rect{{X: 0, Y: 0, Width: 3, Height: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDecompose_Transparent(t *testing.T) {
	if got := Decompose(image.NewNRGBA(image.Rect(0, 0, 4, 4))); len(got) != 0 {
		t.Errorf("got %+v, want no rects", got)
	}
}

func TestDecompose_LShape(t *testing.T) {
	img := maskImage(
		"X..",
		"X..",
		"XXX",
	)
	got := Decompose(img)
	want := []Rect{
		{X: 0, Y: 0, Width: 1, Height: 2},
		{X: 0, Y: 2, Width: 3, Height: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	assertExactCover(t, img, got)
}

func TestDecompose_PassesDiffer(t *testing.T) {
	img := maskImage(
		"X.X",
		"X.X",
	)
	runs := InitialRuns(NewMask(img))
	if len(runs) != 4 {
		t.Fatalf("initial runs: got %d, want 4", len(runs))
	}

	// The adjacent pass stops at the first non-mergeable neighbour.
	adjacent := MergeAdjacent(append([]Rect(nil), runs...))
	if len(adjacent) != 4 {
		t.Errorf("adjacent pass: got %d rects, want 4", len(adjacent))
	}

	got := MergeAll(adjacent)
	want := []Rect{
		{X: 0, Y: 0, Width: 1, Height: 2},
		{X: 2, Y: 0, Width: 1, Height: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("exhaustive pass: got %+v, want %+v", got, want)
	}
	assertExactCover(t, img, Decompose(img))
}

func TestDecompose_CoversIrregularShapes(t *testing.T) {
	shapes := [][]string{
		{
			".XXXX.",
			"XX..XX",
			"XXXXXX",
			"..XX..",
		},
		{
			"X.X.X",
			".X.X.",
			"X.X.X",
		},
		{
			"XXXXX",
			"X...X",
			"X.X.X",
			"X...X",
			"XXXXX",
		},
	}
	for i, rows := range shapes {
		img := maskImage(rows...)
		rects := Decompose(img)
		runs := InitialRuns(NewMask(img))
		if len(rects) > len(runs) {
			t.Errorf("shape %d: %d rects exceeds %d initial runs", i, len(rects), len(runs))
		}
		assertExactCover(t, img, rects)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		rect   Rect
		into   Rect
		merged bool
		want   Rect
	}{
		{"into contains rect", Rect{1, 1, 1, 1}, Rect{0, 0, 3, 3}, true, Rect{0, 0, 3, 3}},
		{"rect contains into", Rect{0, 0, 3, 3}, Rect{1, 1, 1, 1}, true, Rect{0, 0, 3, 3}},
		{"vertical touch", Rect{0, 1, 2, 1}, Rect{0, 0, 2, 1}, true, Rect{0, 0, 2, 2}},
		{"vertical above", Rect{0, 0, 2, 1}, Rect{0, 1, 2, 2}, true, Rect{0, 0, 2, 3}},
		{"horizontal touch", Rect{2, 0, 1, 1}, Rect{0, 0, 2, 1}, true, Rect{0, 0, 3, 1}},
		{"vertical gap", Rect{0, 2, 2, 1}, Rect{0, 0, 2, 1}, false, Rect{0, 0, 2, 1}},
		{"different widths", Rect{0, 1, 3, 1}, Rect{0, 0, 2, 1}, false, Rect{0, 0, 2, 1}},
		{"corner contact", Rect{1, 1, 1, 1}, Rect{0, 0, 1, 1}, false, Rect{0, 0, 1, 1}},
		{"partial overlap", Rect{1, 1, 2, 2}, Rect{0, 0, 2, 2}, false, Rect{0, 0, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			into := tt.into
			got := merge(tt.rect, &into)
			if got != tt.merged {
				t.Errorf("merged: got %v, want %v", got, tt.merged)
			}
			if into != tt.want {
				t.Errorf("into: got %+v, want %+v", into, tt.want)
			}
		})
	}
}

func TestRect_ImageRoundTrip(t *testing.T) {
	r := image.Rect(3, 4, 10, 12)
	if got := RectFrom(r).Image(); got != r {
		t.Errorf("got %v, want %v", got, r)
	}
}

func TestRect_ContainsPoint(t *testing.T) {
	r := Rect{X: 1, Y: 1, Width: 2, Height: 2}
	if !r.ContainsPoint(1, 1) || !r.ContainsPoint(2.5, 2.5) {
		t.Error("expected inside points to be contained")
	}
	if r.ContainsPoint(3, 1) || r.ContainsPoint(0.5, 1) {
		t.Error("expected edge/outside points to be excluded")
	}
}
