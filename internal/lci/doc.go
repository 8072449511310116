// Package lci reads and writes LCI composite images.
//
// An LCI file is the 4-character signature ".LCI" followed by a single line of
// UTF-8 JSON describing the document size and every layer: its raw name, the
// properties parsed from that name, visibility, opacity, blend mode, and the
// layer pixels as a base64 PNG data URI.
//
// # Saving
//
// Save walks the layers of a Document in order. A layer named "defaults"
// seeds the properties of every other layer. Layers marked restrict are
// cropped to their opaque bounds before encoding; all others are stored at
// full document size. The crop origin is recorded as offsetX/offsetY, and a
// document-space position is derived from the crop origin, the anchor and the
// offset properties.
//
// # Loading
//
// Load reverses the process: each payload is decoded and pasted back into a
// full-size transparent layer at its crop origin, and the layer gets its raw
// name back so the embedded properties survive a round trip. Pixels outside a
// restricted layer's opaque bounds are transparent after a round trip; that is
// the point of restricting.
//
// # Streams
//
// Neither Save nor Load closes the stream it is given.
package lci
