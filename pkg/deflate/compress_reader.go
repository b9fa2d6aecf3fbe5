package deflate

import (
	"io"

	"github.com/neekrasov/flatestream/internal/codec"
	"github.com/neekrasov/flatestream/internal/pump"
	"github.com/neekrasov/flatestream/internal/source"
)

// CompressReader - compress-on-read adapter. Reads from it return the
// compressed form of the wrapped stream's bytes; once the wrapped stream
// is exhausted the compressed stream is terminated and reads return
// io.EOF.
type CompressReader struct {
	src *source.Source
	eng *codec.Deflator
}

// NewCompressReader - creates a compressing reader at the given level
// wrapping r.
func NewCompressReader(r io.Reader, level int, opts ...Option) (*CompressReader, error) {
	o := buildOptions(opts)

	eng, err := codec.NewDeflator(level)
	if err != nil {
		return nil, err
	}

	return &CompressReader{src: source.New(r, o.bufferSize), eng: eng}, nil
}

// Read - compresses the wrapped stream's bytes into p.
func (c *CompressReader) Read(p []byte) (int, error) {
	return pump.Read(c.src, c.eng, p)
}

// Reset - swaps the wrapped stream for r with fresh compressor state,
// returning the old stream. Buffered bytes of the old stream are dropped.
func (c *CompressReader) Reset(r io.Reader) (io.Reader, error) {
	if err := c.eng.Reset(); err != nil {
		return nil, err
	}

	return c.src.Replace(r), nil
}

// Inner - the wrapped stream.
func (c *CompressReader) Inner() io.Reader {
	return c.src.Inner()
}

// TotalIn - raw bytes accepted by the compressor.
func (c *CompressReader) TotalIn() uint64 {
	return c.eng.TotalIn()
}

// TotalOut - compressed bytes handed out to the caller.
func (c *CompressReader) TotalOut() uint64 {
	return c.eng.TotalOut()
}

// Write - raw pass-through: writes directly to the wrapped stream when it
// is also writable, bypassing the codec.
func (c *CompressReader) Write(p []byte) (int, error) {
	w, ok := c.src.Inner().(io.Writer)
	if !ok {
		return 0, ErrNotWritable
	}

	return w.Write(p)
}
