package lci

import "image/png"

// ProgressFunc is called after each layer is processed with the number of
// layers done so far and the total.
type ProgressFunc func(done, total int)

// Option configures Save, Encode and Load.
type Option func(*options)

type options struct {
	progress    ProgressFunc
	compression png.CompressionLevel
}

func newOptions(opts []Option) *options {
	o := &options{compression: png.DefaultCompression}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) report(done, total int) {
	if o.progress != nil {
		o.progress(done, total)
	}
}

// WithProgress reports per-layer progress to fn.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithCompression sets the PNG compression level used for layer payloads.
func WithCompression(level png.CompressionLevel) Option {
	return func(o *options) { o.compression = level }
}
