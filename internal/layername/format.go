package layername

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ironsheep/lci-tools/internal/geometry"
)

// Format writes name and the set fields of p back into the mini-language.
// Fields are emitted in a fixed order followed by Data keys sorted
// alphabetically. A non-nil MultiBounds is written as the bare multiBounds
// flag, so the rectangles are recomputed on the next Parse.
//
// Values containing "|" can not be represented and are written as-is.
func Format(name string, p *Properties) string {
	var b strings.Builder
	b.WriteString(name)
	if p == nil {
		return b.String()
	}

	seg := func(key, value string) {
		b.WriteString(segmentDelimiter + key + assignmentDelimiter + value)
	}

	if p.Restrict {
		b.WriteString(segmentDelimiter + "restrict")
	}
	if p.Layer != nil {
		seg("layer", *p.Layer)
	}
	if p.Anchor != nil {
		seg("anchor", formatPoint(*p.Anchor))
	}
	if p.Offset != nil {
		seg("offset", formatPoint(*p.Offset))
	}
	if p.PhysicsGroup != nil {
		seg("physicsGroup", *p.PhysicsGroup)
	}
	if p.Bounds != nil {
		r := *p.Bounds
		seg("bounds", formatFloats(r.X, r.Y, r.Width, r.Height))
	}
	if p.Placeholder != nil {
		seg("placeholder", *p.Placeholder)
	}
	if p.MultiBounds != nil {
		b.WriteString(segmentDelimiter + "multiBounds")
	}

	keys := make([]string, 0, len(p.Data))
	for k := range p.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		seg(k, p.Data[k])
	}

	return b.String()
}

func formatPoint(pt geometry.Point) string {
	return formatFloats(pt.X, pt.Y)
}

func formatFloats(vals ...float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
