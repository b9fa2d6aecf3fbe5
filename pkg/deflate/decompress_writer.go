package deflate

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/flate"

	"github.com/neekrasov/flatestream/internal/codec"
	"github.com/neekrasov/flatestream/internal/pump"
)

// DecompressWriter - decompress-on-write adapter. Compressed bytes written
// to it are decompressed and forwarded to the wrapped writer. Go's DEFLATE
// decoder pulls from its source, so the adapter inverts direction through
// a pipe serviced by one internal copier goroutine; writes block until the
// decoder has consumed them, which keeps the data path synchronous from
// the caller's point of view. The adapter itself is not safe for
// concurrent callers.
//
// Once the compressed stream reaches its natural end, further written
// bytes are accepted and discarded without affecting TotalIn. Close waits
// for the copier and reports a truncated stream as io.ErrUnexpectedEOF;
// closing twice is a no-op. Close never closes the wrapped writer.
type DecompressWriter struct {
	mu  sync.Mutex // guards dst against copier/caller overlap
	dst io.Writer

	pw     *io.PipeWriter
	done   chan struct{}
	err    error // copier outcome, valid once done is closed
	closed bool

	totalIn  atomic.Uint64
	totalOut atomic.Uint64

	scratchSize int
}

// NewDecompressWriter - creates a decompressing writer wrapping w.
func NewDecompressWriter(w io.Writer, opts ...Option) *DecompressWriter {
	o := buildOptions(opts)
	if o.scratchSize <= 0 {
		o.scratchSize = pump.DefaultScratchSize
	}

	d := &DecompressWriter{dst: w, scratchSize: o.scratchSize}
	d.start()

	return d
}

// Write - feeds compressed bytes to the decoder. Returns once the decoder
// has consumed p; decoded output reaching the wrapped writer is subject to
// the decoder's internal buffering.
func (d *DecompressWriter) Write(p []byte) (int, error) {
	if d.closed {
		return 0, codec.ErrFinished
	}

	return d.pw.Write(p)
}

// Flush - flushes the wrapped writer when it supports flushing.
func (d *DecompressWriter) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if f, ok := d.dst.(interface{ Flush() error }); ok {
		return f.Flush()
	}

	return nil
}

// Close - signals end of input, waits for the copier to forward all
// remaining output and reports its outcome: nil for a complete stream,
// io.ErrUnexpectedEOF for a truncated one, or the sink's write error.
// Idempotent; does not close the wrapped writer.
func (d *DecompressWriter) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	_ = d.pw.Close()
	<-d.done

	return d.err
}

// Reset - finishes the current logical stream, then installs w with fresh
// decoder state and returns the old sink. If finishing fails the swap does
// not happen.
func (d *DecompressWriter) Reset(w io.Writer) (io.Writer, error) {
	if err := d.Close(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	old := d.dst
	d.dst = w
	d.mu.Unlock()

	d.totalIn.Store(0)
	d.totalOut.Store(0)
	d.closed = false
	d.start()

	return old, nil
}

// Inner - the wrapped writer.
func (d *DecompressWriter) Inner() io.Writer {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.dst
}

// TotalIn - compressed bytes consumed by the decoder, excluding anything
// past the end-of-stream marker.
func (d *DecompressWriter) TotalIn() uint64 {
	return d.totalIn.Load()
}

// TotalOut - decompressed bytes forwarded toward the wrapped writer.
func (d *DecompressWriter) TotalOut() uint64 {
	return d.totalOut.Load()
}

// Read - raw pass-through: reads directly from the wrapped stream when it
// is also readable, bypassing the codec.
func (d *DecompressWriter) Read(p []byte) (int, error) {
	r, ok := d.Inner().(io.Reader)
	if !ok {
		return 0, ErrNotReadable
	}

	return r.Read(p)
}

func (d *DecompressWriter) start() {
	pr, pw := io.Pipe()
	d.pw = pw
	d.done = make(chan struct{})
	d.err = nil

	go d.copyLoop(pr)
}

// copyLoop - services the pipe: pulls compressed bytes through the decoder
// and forwards decoded output to the sink. Runs until end of stream, a
// decode error or a sink error.
func (d *DecompressWriter) copyLoop(pr *io.PipeReader) {
	defer close(d.done)

	br := bufio.NewReader(pr)
	in := &meteredByteReader{r: br, n: &d.totalIn}
	fr := flate.NewReader(in)
	buf := make([]byte, d.scratchSize)

	for {
		n, err := fr.Read(buf)
		if n > 0 {
			d.totalOut.Add(uint64(n))
			if werr := d.writeFull(buf[:n]); werr != nil {
				d.err = werr
				pr.CloseWithError(werr)

				return
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			// Natural end of the compressed stream. Drain trailing bytes
			// outside the metered path so writers do not block and
			// TotalIn keeps the exact end-of-stream offset.
			_, _ = io.Copy(io.Discard, br)

			return
		default:
			d.err = err
			pr.CloseWithError(err)

			return
		}
	}
}

// writeFull - forwards p to the sink in full, retrying partial writes.
func (d *DecompressWriter) writeFull(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for len(p) > 0 {
		n, err := d.dst.Write(p)
		if n > 0 {
			p = p[n:]
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}

	return nil
}

// meteredByteReader - counts bytes the decoder consumed; the count is
// atomic because callers read it while the copier runs.
type meteredByteReader struct {
	r *bufio.Reader
	n *atomic.Uint64
}

func (m *meteredByteReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	m.n.Add(uint64(n))

	return n, err
}

func (m *meteredByteReader) ReadByte() (byte, error) {
	b, err := m.r.ReadByte()
	if err == nil {
		m.n.Add(1)
	}

	return b, err
}
