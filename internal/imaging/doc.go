// Package imaging loads and summarizes the raster images that LCI layers are
// built from.
//
// Layer sources are read through an ImageCache, which is safe for concurrent
// use and reloads a file when its modification time changes. Place fits a
// source onto a full-size transparent layer canvas anchored at the top-left
// corner.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left. Regions are
// image.Rectangle values: Min is inclusive, Max is exclusive.
//
// # Inspection
//
// CropToPNG returns a region as base64 PNG for clients that display layer
// previews. LayerColor reports the alpha-weighted average colour and the
// opaque coverage of a layer.
package imaging
