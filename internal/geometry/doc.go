// Package geometry derives layer geometry from per-pixel alpha.
//
// Two algorithms live here:
//
//   - OpaqueBounds trims a layer to the tightest rectangle that contains every
//     pixel with non-zero alpha. A layer with no such pixel trims to a 1x1
//     rectangle at the origin, never to an empty one.
//
//   - Decompose covers the opaque pixels of a layer with axis-aligned
//     rectangles. It starts from one rectangle per horizontal run and merges
//     them in two passes: a cheap pass that only looks at the immediately
//     following rectangles, then an exhaustive pass. The result always covers
//     every opaque pixel exactly once but is not guaranteed to be minimal, and
//     its order is stable for a given input.
//
// # Coordinate System
//
// Coordinates are relative to the image bounds: (0,0) is the top-left pixel of
// the image even when its Bounds().Min is not the origin. X grows to the right
// and Y grows downward.
package geometry
