package lci

import "errors"

// Validation errors.
var (
	// ErrDuplicateLayerName is returned when two layers share a bare name.
	ErrDuplicateLayerName = errors.New("layer name is used for multiple layers")

	// ErrInvalidSize is returned when the document width or height is not
	// positive. Load rejects such documents, so Save does too.
	ErrInvalidSize = errors.New("document dimensions must be positive")
)

// Format errors, returned while loading.
var (
	// ErrInvalidSignature is returned when the input does not start with the
	// LCI signature. No JSON parsing is attempted in that case.
	ErrInvalidSignature = errors.New("invalid file signature")

	// ErrMalformedDocument is returned when the JSON payload can not be parsed
	// or describes an impossible document.
	ErrMalformedDocument = errors.New("malformed LCI document")

	// ErrMalformedImage is returned when a layer's data URI, base64 text or
	// PNG bytes can not be decoded.
	ErrMalformedImage = errors.New("malformed layer image")
)

// ErrEncoding is returned when layer pixels or the document can not be
// serialized or written.
var ErrEncoding = errors.New("failed to encode LCI document")
