package deflate

import (
	"io"

	"github.com/neekrasov/flatestream/internal/codec"
	"github.com/neekrasov/flatestream/internal/pump"
)

// Writer - compress-on-write adapter. Raw bytes written to it are
// compressed and forwarded to the wrapped writer. The stream must be
// terminated with Close (or released open with FlushClose) or the final
// compressed block is lost; Close never closes the wrapped writer, so
// ownership of it stays with the caller.
type Writer struct {
	pw       *pump.Writer
	eng      *codec.Deflator
	released bool
}

// NewWriter - creates a compressing writer at the given level wrapping w.
func NewWriter(w io.Writer, level int, opts ...Option) (*Writer, error) {
	o := buildOptions(opts)

	eng, err := codec.NewDeflator(level)
	if err != nil {
		return nil, err
	}

	return &Writer{eng: eng, pw: pump.NewWriter(w, eng, o.scratchSize)}, nil
}

// Write - compresses p into the wrapped writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.released {
		return 0, codec.ErrFinished
	}

	return w.pw.Write(p)
}

// Flush - emits all compressed data for the input written so far plus a
// sync-flush boundary, leaving the stream open for more input. The
// boundary is the empty-stored-block marker, so the output so far is a
// readable DEFLATE prefix.
func (w *Writer) Flush() error {
	if w.released {
		return codec.ErrFinished
	}

	return w.pw.Flush()
}

// Close - terminates the compressed stream and forwards the remaining
// output. A failed Close can be retried; once it returns nil further
// calls are no-ops. Does not close the wrapped writer.
func (w *Writer) Close() error {
	if w.released {
		return nil
	}

	return w.pw.Finish()
}

// FlushClose - flushes without terminating the stream and returns the
// wrapped writer. The emitted bytes can be extended by another DEFLATE
// stream; appending the bytes 0x03 0x00 closes them into a complete one.
// The adapter accepts no further input until Reset, so the released
// stream cannot be written through it.
func (w *Writer) FlushClose() (io.Writer, error) {
	if err := w.pw.Flush(); err != nil {
		return nil, err
	}
	w.released = true

	return w.pw.Inner(), nil
}

// Reset - terminates the current stream into the current sink, then
// installs dst with fresh compressor state and returns the old sink. A
// stream released by FlushClose is left unterminated. If finishing fails
// the swap does not happen.
func (w *Writer) Reset(dst io.Writer) (io.Writer, error) {
	if !w.released {
		if err := w.pw.Finish(); err != nil {
			return nil, err
		}
	}
	if err := w.eng.Reset(); err != nil {
		return nil, err
	}
	w.released = false

	return w.pw.Replace(dst), nil
}

// Inner - the wrapped writer. Writing to it directly while a stream is in
// progress corrupts subsequent output; that is the caller's
// responsibility.
func (w *Writer) Inner() io.Writer {
	return w.pw.Inner()
}

// TotalIn - raw bytes accepted by the compressor.
func (w *Writer) TotalIn() uint64 {
	return w.eng.TotalIn()
}

// TotalOut - compressed bytes handed to the wrapped writer.
func (w *Writer) TotalOut() uint64 {
	return w.eng.TotalOut()
}

// Read - raw pass-through: reads directly from the wrapped stream when it
// is also readable, bypassing the codec. Lets two adapters share one
// bidirectional stream.
func (w *Writer) Read(p []byte) (int, error) {
	r, ok := w.pw.Inner().(io.Reader)
	if !ok {
		return 0, ErrNotReadable
	}

	return r.Read(p)
}
