package deflate

import (
	"io"

	"github.com/neekrasov/flatestream/internal/codec"
	"github.com/neekrasov/flatestream/internal/source"
)

// Reader - decompress-on-read adapter. Reads from it return the
// decompressed form of the wrapped stream's bytes. After the compressed
// stream's natural end every read returns io.EOF until Reset; bytes
// following the end-of-stream marker are left unconsumed in the source
// window.
type Reader struct {
	src *source.Source
	inf *codec.Inflator
}

// NewReader - creates a decompressing reader wrapping r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	o := buildOptions(opts)
	src := source.New(r, o.bufferSize)

	return &Reader{src: src, inf: codec.NewInflator(src)}
}

// Read - decompresses into p. Underlying I/O errors propagate verbatim;
// malformed input surfaces as the decoder's corruption error.
func (r *Reader) Read(p []byte) (int, error) {
	return r.inf.Read(p)
}

// Reset - swaps the wrapped stream for nr with fresh decoder state,
// returning the old stream. Buffered bytes of the old stream are dropped.
func (r *Reader) Reset(nr io.Reader) (io.Reader, error) {
	old := r.src.Replace(nr)

	return old, r.inf.Reset(r.src)
}

// Close - releases the decoder. Idempotent; does not close the wrapped
// stream.
func (r *Reader) Close() error {
	return r.inf.Close()
}

// Inner - the wrapped stream. Reading from it directly while a stream is
// in progress corrupts subsequent output; that is the caller's
// responsibility.
func (r *Reader) Inner() io.Reader {
	return r.src.Inner()
}

// TotalIn - compressed bytes consumed by the decoder, excluding trailing
// bytes past the end-of-stream marker.
func (r *Reader) TotalIn() uint64 {
	return r.inf.TotalIn()
}

// TotalOut - decompressed bytes produced.
func (r *Reader) TotalOut() uint64 {
	return r.inf.TotalOut()
}

// Write - raw pass-through: writes directly to the wrapped stream when it
// is also writable, bypassing the codec.
func (r *Reader) Write(p []byte) (int, error) {
	w, ok := r.src.Inner().(io.Writer)
	if !ok {
		return 0, ErrNotWritable
	}

	return w.Write(p)
}
