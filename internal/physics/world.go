// Package physics turns the collision data stored in an LCI document into a
// queryable chipmunk space.
//
// Every multiBounds rectangle and every explicit bounds rectangle becomes a
// static box. Boxes from layers that share a physicsGroup are placed in the
// same shape filter group, so a query issued for that group skips them.
package physics

import (
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/ironsheep/lci-tools/internal/geometry"
	"github.com/ironsheep/lci-tools/internal/lci"
)

// Kind tells where a collision box came from.
type Kind string

const (
	KindMultiBounds Kind = "multiBounds"
	KindBounds      Kind = "bounds"
)

// Hit is one collision box returned by a query.
type Hit struct {
	Layer string        `json:"layer"`
	Group string        `json:"group,omitempty"`
	Kind  Kind          `json:"kind"`
	Rect  geometry.Rect `json:"rect"`

	order int
}

// World is a static collision space built from one document.
type World struct {
	space  *cp.Space
	groups map[string]uint
	count  int
}

// Build creates a world from the encoded layers of dd. Layers without
// collision data add nothing.
func Build(dd *lci.DocumentData) *World {
	w := &World{
		space:  cp.NewSpace(),
		groups: make(map[string]uint),
	}

	for _, ld := range dd.Layers {
		p := ld.Properties
		if p == nil {
			continue
		}
		group := ""
		if p.PhysicsGroup != nil {
			group = *p.PhysicsGroup
		}
		for _, r := range p.MultiBounds {
			w.add(Hit{Layer: ld.Name, Group: group, Kind: KindMultiBounds, Rect: r})
		}
		if p.Bounds != nil {
			r := p.Bounds.Translate(ld.Position.X, ld.Position.Y)
			w.add(Hit{Layer: ld.Name, Group: group, Kind: KindBounds, Rect: r})
		}
	}
	return w
}

func (w *World) add(h Hit) {
	h.order = w.count
	w.count++

	bb := cp.BB{L: h.Rect.X, B: h.Rect.Y, R: h.Rect.Right(), T: h.Rect.Bottom()}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetFilter(cp.NewShapeFilter(w.groupID(h.Group), cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
	shape.UserData = h
	w.space.AddShape(shape)
}

// groupID returns the filter group for name. The empty name maps to
// cp.NO_GROUP.
func (w *World) groupID(name string) uint {
	if name == "" {
		return cp.NO_GROUP
	}
	id, ok := w.groups[name]
	if !ok {
		id = uint(len(w.groups) + 1)
		w.groups[name] = id
	}
	return id
}

// Len returns the number of collision boxes.
func (w *World) Len() int { return w.count }

// Groups returns the physics group names in sorted order.
func (w *World) Groups() []string {
	names := make([]string, 0, len(w.groups))
	for name := range w.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every box in insertion order.
func (w *World) All() []Hit {
	var hits []Hit
	w.space.EachShape(func(s *cp.Shape) {
		if h, ok := s.UserData.(Hit); ok {
			hits = append(hits, h)
		}
	})
	return sortHits(hits)
}

// At returns the boxes containing the point (x, y). Right and bottom edges
// are exclusive. Boxes in the group named exclude are skipped; pass "" to
// match everything.
func (w *World) At(x, y float64, exclude string) []Hit {
	bb := cp.BB{L: x, B: y, R: x, T: y}
	return w.query(bb, exclude, func(r geometry.Rect) bool {
		return r.ContainsPoint(x, y)
	})
}

// Overlapping returns the boxes sharing a non-empty area with r. Boxes that
// only touch r along an edge are not reported.
func (w *World) Overlapping(r geometry.Rect, exclude string) []Hit {
	bb := cp.BB{L: r.X, B: r.Y, R: r.Right(), T: r.Bottom()}
	return w.query(bb, exclude, func(o geometry.Rect) bool {
		return o.X < r.Right() && r.X < o.Right() &&
			o.Y < r.Bottom() && r.Y < o.Bottom()
	})
}

func (w *World) query(bb cp.BB, exclude string, keep func(geometry.Rect) bool) []Hit {
	filter := cp.SHAPE_FILTER_ALL
	if exclude != "" {
		if id, ok := w.groups[exclude]; ok {
			filter.Group = id
		}
	}

	var hits []Hit
	w.space.BBQuery(bb, filter, func(s *cp.Shape, _ interface{}) {
		h, ok := s.UserData.(Hit)
		if ok && keep(h.Rect) {
			hits = append(hits, h)
		}
	}, nil)
	return sortHits(hits)
}

func sortHits(hits []Hit) []Hit {
	sort.Slice(hits, func(i, j int) bool { return hits[i].order < hits[j].order })
	return hits
}
