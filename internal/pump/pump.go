// Package pump implements the loop that drives a chunked codec engine
// across arbitrarily-sized read and write calls: the pull pump shuttles
// bytes from a buffered source through the engine into the caller's
// buffer, the push pump shuttles caller input through the engine into a
// sink, retrying partial sink writes until everything produced has been
// forwarded.
package pump

import (
	"errors"
	"io"

	"github.com/neekrasov/flatestream/internal/codec"
	"github.com/neekrasov/flatestream/internal/source"
)

// DefaultScratchSize - size of the push pump's pending output region.
const DefaultScratchSize = 32 << 10

type flusher interface {
	Flush() error
}

// Read - pull-mode pump. Refills the source window, runs one engine step
// with the caller's buffer as output target and repeats until bytes were
// produced, the engine reports end of stream (io.EOF after the drain), or
// an error occurs. A zero-length buffer is a no-op.
func Read(src *source.Source, eng codec.Engine, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for {
		window, err := src.Fill()
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return 0, err
		}

		mode := codec.NoFlush
		if eof {
			window = nil
			mode = codec.Finish
		}

		consumed, produced, perr := eng.Process(window, p, mode)
		if consumed > 0 {
			if _, derr := src.Discard(consumed); derr != nil {
				return 0, derr
			}
		}
		if perr != nil {
			return 0, perr
		}

		if produced > 0 {
			return produced, nil
		}
		if eng.Finished() {
			return 0, io.EOF
		}
		if eof && consumed == 0 {
			return 0, io.ErrNoProgress
		}
	}
}

// Writer - push-mode pump. Owns the sink, the engine and a fixed scratch
// region the engine produces into; the scratch is always fully forwarded
// to the sink before the next engine step. Bytes the sink refused stay
// pending in the scratch and are retried before anything else, so a
// transient sink failure never loses produced output.
type Writer struct {
	dst     io.Writer
	eng     codec.Engine
	scratch []byte
	off     int
	end     int
}

// NewWriter - creates a push pump forwarding engine output to dst.
func NewWriter(dst io.Writer, eng codec.Engine, scratchSize int) *Writer {
	if scratchSize <= 0 {
		scratchSize = DefaultScratchSize
	}

	return &Writer{dst: dst, eng: eng, scratch: make([]byte, scratchSize)}
}

// Write - feeds p through the engine, forwarding produced bytes to the
// sink, until all of p has been consumed or an error occurs.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.flushPending(); err != nil {
		return 0, err
	}

	var written int
	for written < len(p) {
		consumed, produced, err := w.eng.Process(p[written:], w.scratch, codec.NoFlush)
		written += consumed
		if ferr := w.forward(produced); ferr != nil {
			return written, ferr
		}
		if err != nil {
			return written, err
		}
		if consumed == 0 && produced == 0 {
			return written, io.ErrNoProgress
		}
	}

	return written, nil
}

// Flush - drives the engine to emit everything buffered so far plus a
// sync-flush boundary, then flushes the sink when it supports flushing.
// The stream stays open for further input.
func (w *Writer) Flush() error {
	if err := w.drive(codec.SyncFlush); err != nil {
		return err
	}

	if f, ok := w.dst.(flusher); ok {
		return f.Flush()
	}

	return nil
}

// Finish - drives the engine to its natural end of stream and forwards all
// remaining output. A failed Finish can be retried; once it returns nil
// further calls are no-ops.
func (w *Writer) Finish() error {
	return w.drive(codec.Finish)
}

// Replace - swaps the sink, returning the old one.
func (w *Writer) Replace(dst io.Writer) io.Writer {
	old := w.dst
	w.dst = dst

	return old
}

// Inner - the wrapped sink.
func (w *Writer) Inner() io.Writer {
	return w.dst
}

// drive - applies mode once, then drains the engine until it stops
// producing.
func (w *Writer) drive(mode codec.Mode) error {
	if err := w.flushPending(); err != nil {
		return err
	}

	for {
		_, produced, err := w.eng.Process(nil, w.scratch, mode)
		mode = codec.NoFlush
		if ferr := w.forward(produced); ferr != nil {
			return ferr
		}
		if err != nil {
			return err
		}
		if produced == 0 {
			return nil
		}
	}
}

// forward - marks scratch[:n] as pending and forwards it to the sink. On
// failure the unforwarded remainder stays pending and is retried by the
// next call into the pump.
func (w *Writer) forward(n int) error {
	w.off, w.end = 0, n

	return w.flushPending()
}

// flushPending - writes the pending scratch region to the sink in full,
// retrying partial writes. A write that makes no progress surfaces as
// io.ErrShortWrite.
func (w *Writer) flushPending() error {
	for w.off < w.end {
		n, err := w.dst.Write(w.scratch[w.off:w.end])
		w.off += n
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	w.off, w.end = 0, 0

	return nil
}
