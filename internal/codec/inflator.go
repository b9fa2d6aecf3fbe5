package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// ByteSource - input side of the decompress engine. The byte-granular
// interface keeps the decoder from over-reading, so consumed counts are
// exact and trailing bytes stay with the source.
type ByteSource interface {
	io.Reader
	io.ByteReader
}

// Inflator - decompress engine bound to a byte-exact source. Unlike the
// compress direction there is no chunked Process contract here: Go's
// DEFLATE decoders pull from their source and poison themselves when it
// runs dry, so the engine owns its source and is driven by Read.
type Inflator struct {
	fr       io.ReadCloser
	src      *meteredSource
	totalOut uint64
	finished bool
}

// meteredSource - counts bytes the decoder actually consumed.
type meteredSource struct {
	src ByteSource
	n   uint64
}

func (m *meteredSource) Read(p []byte) (int, error) {
	n, err := m.src.Read(p)
	m.n += uint64(n)

	return n, err
}

func (m *meteredSource) ReadByte() (byte, error) {
	b, err := m.src.ReadByte()
	if err == nil {
		m.n++
	}

	return b, err
}

// NewInflator - creates a decompress engine reading from src.
func NewInflator(src ByteSource) *Inflator {
	ms := &meteredSource{src: src}

	return &Inflator{fr: flate.NewReader(ms), src: ms}
}

// Read - decompresses into p. A zero-length p is a no-op, not an
// end-of-stream probe. After the stream's natural end every call returns
// io.EOF until Reset; bytes past the end are left unconsumed in the source.
func (i *Inflator) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if i.finished {
		return 0, io.EOF
	}

	n, err := i.fr.Read(p)
	i.totalOut += uint64(n)
	if errors.Is(err, io.EOF) {
		i.finished = true
	}

	return n, err
}

// Finished - reports whether the decoder has seen the end-of-stream marker.
func (i *Inflator) Finished() bool {
	return i.finished
}

// TotalIn - compressed bytes consumed by the decoder, excluding anything
// past the end-of-stream marker.
func (i *Inflator) TotalIn() uint64 {
	return i.src.n
}

// TotalOut - decompressed bytes produced.
func (i *Inflator) TotalOut() uint64 {
	return i.totalOut
}

// Reset - rebinds the engine to src and clears all state, reusing the
// decoder allocation.
func (i *Inflator) Reset(src ByteSource) error {
	i.src = &meteredSource{src: src}
	i.totalOut = 0
	i.finished = false

	fr, ok := i.fr.(flate.Resetter)
	if !ok {
		return fmt.Errorf("deflate reader does not support reset")
	}

	return fr.Reset(i.src, nil)
}

// Close - releases the decoder. The bound source is left untouched.
func (i *Inflator) Close() error {
	return i.fr.Close()
}
