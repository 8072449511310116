// Package layername parses the property mini-language embedded in layer
// names.
//
// A layer name is a bare name followed by "|"-separated property segments:
//
//	hero|restrict=true|anchor=bottom_center|offset=0,4|team=blue
//
// Each segment is either key=value or a bare key, which means key=true. Keys
// must start with a letter. Recognized keys (restrict, layer, anchor, offset,
// physicsGroup, bounds, placeholder, multiBounds) fill typed fields of
// Properties; any other key is stored verbatim in Properties.Data.
package layername

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ironsheep/lci-tools/internal/geometry"
)

const (
	segmentDelimiter    = "|"
	assignmentDelimiter = "="
)

// Grammar errors.
var (
	ErrBlankPropertySegment = errors.New("blank property section")
	ErrInvalidPropertyKey   = errors.New("invalid property key")
	ErrInvalidAnchor        = errors.New("invalid anchor")
	ErrInvalidOffset        = errors.New("invalid offset")
	ErrInvalidBounds        = errors.New("invalid bounds")
)

// Anchors maps the named anchor presets to normalized points. Single-axis
// presets center the other axis.
var Anchors = map[string]geometry.Point{
	"top_left":      {X: 0, Y: 0},
	"top_center":    {X: 0.5, Y: 0},
	"top_right":     {X: 1, Y: 0},
	"center_left":   {X: 0, Y: 0.5},
	"center_center": {X: 0.5, Y: 0.5},
	"center_right":  {X: 1, Y: 0.5},
	"bottom_left":   {X: 0, Y: 1},
	"bottom_center": {X: 0.5, Y: 1},
	"bottom_right":  {X: 1, Y: 1},
	"top":           {X: 0.5, Y: 0},
	"bottom":        {X: 0.5, Y: 1},
	"left":          {X: 0, Y: 0.5},
	"right":         {X: 1, Y: 0.5},
	"center":        {X: 0.5, Y: 0.5},
}

// Property is one decoded name segment. The concrete types below are the
// complete set.
type Property interface {
	property()
}

type (
	Restrict     bool
	TargetLayer  string
	Anchor       geometry.Point
	Offset       geometry.Point
	PhysicsGroup string
	Bounds       geometry.Rect
	Placeholder  string
	// MultiBounds requests a rectangle cover of the layer pixels when true.
	MultiBounds bool
	// Extra is an unrecognized key with its raw value.
	Extra struct{ Key, Value string }
)

func (Restrict) property()     {}
func (TargetLayer) property()  {}
func (Anchor) property()       {}
func (Offset) property()       {}
func (PhysicsGroup) property() {}
func (Bounds) property()       {}
func (Placeholder) property()  {}
func (MultiBounds) property()  {}
func (Extra) property()        {}

// Name returns the bare layer name, the text before the first "|".
func Name(raw string) string {
	name, _, _ := strings.Cut(raw, segmentDelimiter)
	return name
}

// Parse decodes the properties declared in raw on top of a deep copy of
// defaults (which may be nil). mask supplies the pixels used when the name
// sets multiBounds; a nil mask is treated as fully transparent.
func Parse(raw string, defaults *Properties, mask image.Image) (*Properties, error) {
	props := defaults.Clone()

	segments := strings.Split(raw, segmentDelimiter)
	for _, seg := range segments[1:] {
		prop, err := ParseSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", raw, err)
		}

		switch v := prop.(type) {
		case Restrict:
			props.Restrict = bool(v)
		case TargetLayer:
			s := string(v)
			props.Layer = &s
		case Anchor:
			pt := geometry.Point(v)
			props.Anchor = &pt
		case Offset:
			pt := geometry.Point(v)
			props.Offset = &pt
		case PhysicsGroup:
			s := string(v)
			props.PhysicsGroup = &s
		case Bounds:
			r := geometry.Rect(v)
			props.Bounds = &r
		case Placeholder:
			s := string(v)
			props.Placeholder = &s
		case MultiBounds:
			if v {
				props.MultiBounds = multiBounds(mask)
			}
		case Extra:
			props.Data[v.Key] = v.Value
		default:
			panic(fmt.Sprintf("layername: unhandled property %T", prop))
		}
	}

	return props, nil
}

// ParseSegment decodes a single key[=value] segment.
func ParseSegment(seg string) (Property, error) {
	parts := strings.Split(seg, assignmentDelimiter)
	key := parts[0]
	if strings.TrimSpace(key) == "" {
		return nil, ErrBlankPropertySegment
	}
	if r, _ := utf8.DecodeRuneInString(key); !unicode.IsLetter(r) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPropertyKey, key)
	}

	value := "true"
	if len(parts) > 1 {
		value = parts[1]
	}

	switch key {
	case "restrict":
		return Restrict(value == "true"), nil
	case "layer":
		return TargetLayer(value), nil
	case "anchor":
		pt, err := parseAnchor(value)
		if err != nil {
			return nil, err
		}
		return Anchor(pt), nil
	case "offset":
		pt, ok := parsePoint(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidOffset, value)
		}
		return Offset(pt), nil
	case "physicsGroup":
		return PhysicsGroup(value), nil
	case "bounds":
		r, ok := parseRect(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBounds, value)
		}
		return Bounds(r), nil
	case "placeholder":
		return Placeholder(value), nil
	case "multiBounds":
		return MultiBounds(value == "true"), nil
	}

	// Unrecognized keys keep everything after the first "=", including any
	// further "=" characters.
	if _, rest, ok := strings.Cut(seg, assignmentDelimiter); ok {
		value = rest
	}
	return Extra{Key: key, Value: value}, nil
}

func parseAnchor(value string) (geometry.Point, error) {
	if pt, ok := Anchors[value]; ok {
		return pt, nil
	}
	pt, ok := parsePoint(value)
	if !ok {
		return geometry.Point{}, fmt.Errorf("%w: %s", ErrInvalidAnchor, value)
	}
	return pt, nil
}

func parsePoint(value string) (geometry.Point, bool) {
	f, ok := parseFloats(value, 2)
	if !ok {
		return geometry.Point{}, false
	}
	return geometry.Point{X: f[0], Y: f[1]}, true
}

func parseRect(value string) (geometry.Rect, bool) {
	f, ok := parseFloats(value, 4)
	if !ok {
		return geometry.Rect{}, false
	}
	return geometry.Rect{X: f[0], Y: f[1], Width: f[2], Height: f[3]}, true
}

// parseFloats splits value on commas and parses exactly n numbers.
// Surrounding whitespace on each number is ignored.
func parseFloats(value string, n int) ([]float64, bool) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func multiBounds(mask image.Image) []geometry.Rect {
	if mask == nil {
		return []geometry.Rect{}
	}
	rects := geometry.Decompose(mask)
	if rects == nil {
		rects = []geometry.Rect{}
	}
	return rects
}
