// Package server implements the MCP (Model Context Protocol) server for LCI
// layered composite image tools.
//
// This package provides a JSON-RPC 2.0 server that exposes LCI document
// packing, inspection and collision queries through the MCP protocol, so an
// assistant or editor integration can build and examine game art documents.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Documents:
//   - lci_inspect: List layers, properties and placement of an .lci file
//   - lci_pack: Build an .lci file from a YAML manifest
//   - lci_unpack: Extract layers as PNGs plus a manifest
//   - lci_flatten: Composite the visible artwork layers
//   - lci_collision_query: Point and rectangle queries against collision boxes
//
// Layer names:
//   - lci_parse_layer_name: Split "name|key=value" into name and properties
//   - lci_format_layer_name: The inverse of lci_parse_layer_name
//
// Layer images:
//   - image_load: Dimensions, format and alpha of a source image
//   - lci_opaque_bounds: Opaque-pixel bounding box used by restrict
//   - lci_multibounds: Rectangle decomposition used by multiBounds
//
// # Image Caching
//
// Source images are cached by path and reloaded when their modification time
// changes, so repeated lci_pack calls while an artist edits one layer only
// decode the file that changed.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(config.LoadSettings())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
