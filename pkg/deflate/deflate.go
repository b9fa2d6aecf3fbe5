// Package deflate adapts DEFLATE compression and decompression to Go's
// blocking stream interfaces. It provides four adapter shapes: Writer
// compresses what is written to it, CompressReader compresses what is read
// from it, Reader decompresses what is read from it and DecompressWriter
// decompresses what is written to it. All adapters produce and consume raw
// DEFLATE streams with no gzip or zlib envelope, byte-compatible with any
// conforming DEFLATE implementation.
package deflate

import (
	"errors"

	"github.com/klauspost/compress/flate"
)

// Compression levels, mirroring the underlying DEFLATE engine.
const (
	NoCompression      = flate.NoCompression
	BestSpeed          = flate.BestSpeed
	BestCompression    = flate.BestCompression
	DefaultCompression = flate.DefaultCompression
)

var (
	// ErrNotReadable - the wrapped stream does not support the raw-read
	// pass-through.
	ErrNotReadable = errors.New("deflate: wrapped stream is not readable")
	// ErrNotWritable - the wrapped stream does not support the raw-write
	// pass-through.
	ErrNotWritable = errors.New("deflate: wrapped stream is not writable")
)
