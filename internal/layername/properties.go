package layername

import (
	"maps"

	"github.com/ironsheep/lci-tools/internal/geometry"
)

// Properties holds the behaviour declared in a layer name.
//
// Optional fields are nil when the name (and its defaults) did not set them;
// they serialize as null. Keys the grammar does not recognize are kept in
// Data and recognized keys never land there.
type Properties struct {
	// Restrict crops the layer to its opaque bounds when saving.
	Restrict bool `json:"restrict"`

	// Layer overrides the logical layer the object belongs to.
	Layer *string `json:"layer"`

	// Anchor is a normalized (0-1) point inside the content bounds.
	Anchor *geometry.Point `json:"anchor"`

	// Offset is subtracted from the layer position, in pixels.
	Offset *geometry.Point `json:"offset"`

	PhysicsGroup *string        `json:"physicsGroup"`
	Bounds       *geometry.Rect `json:"bounds"`
	Placeholder  *string        `json:"placeholder"`

	// MultiBounds is the rectangle cover of the layer's opaque pixels. It is
	// computed from pixels and never inherited from defaults.
	MultiBounds []geometry.Rect `json:"multiBounds"`

	// Data is the free-form extension bag.
	Data map[string]string `json:"data"`
}

// NewProperties returns empty properties with an initialized Data bag.
func NewProperties() *Properties {
	return &Properties{Data: make(map[string]string)}
}

// Clone returns a deep copy of p suitable as the starting point for a layer
// that inherits from it. MultiBounds is not carried over. A nil p yields
// empty properties.
func (p *Properties) Clone() *Properties {
	c := NewProperties()
	if p == nil {
		return c
	}
	c.Restrict = p.Restrict
	c.Layer = cloneString(p.Layer)
	c.PhysicsGroup = cloneString(p.PhysicsGroup)
	c.Placeholder = cloneString(p.Placeholder)
	if p.Anchor != nil {
		a := *p.Anchor
		c.Anchor = &a
	}
	if p.Offset != nil {
		o := *p.Offset
		c.Offset = &o
	}
	if p.Bounds != nil {
		b := *p.Bounds
		c.Bounds = &b
	}
	maps.Copy(c.Data, p.Data)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
