package codec

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/flate"
)

// maxFeedSize - upper bound on input consumed by a single Process call,
// keeping the pending region bounded between drains.
const maxFeedSize = 32 << 10

// Deflator - chunked compress engine. Wraps a DEFLATE writer emitting into
// an internal pending buffer; each Process call feeds at most one chunk of
// input and drains as much pending output as the caller's buffer allows.
// Input is consumed only when the pending region is empty, so produced
// bytes are always fully forwarded before the next compression step
// overwrites them.
type Deflator struct {
	fw       *flate.Writer
	pending  bytes.Buffer
	totalIn  uint64
	totalOut uint64
	finished bool
}

// NewDeflator - creates a compress engine for the given DEFLATE level.
func NewDeflator(level int) (*Deflator, error) {
	d := &Deflator{}

	fw, err := flate.NewWriter(&d.pending, level)
	if err != nil {
		return nil, fmt.Errorf("init deflate writer: %w", err)
	}
	d.fw = fw

	return d, nil
}

// Process - implements Engine.
func (d *Deflator) Process(in, out []byte, mode Mode) (int, int, error) {
	var consumed int
	if d.pending.Len() == 0 && len(in) > 0 {
		if d.finished {
			return 0, 0, ErrFinished
		}

		chunk := in
		if len(chunk) > maxFeedSize {
			chunk = chunk[:maxFeedSize]
		}

		n, err := d.fw.Write(chunk)
		d.totalIn += uint64(n)
		consumed = n
		if err != nil {
			return consumed, 0, err
		}
	}

	// Flush and finish apply only once the whole input of this call has
	// been accepted by the compressor.
	if consumed == len(in) && !d.finished {
		switch mode {
		case SyncFlush:
			if err := d.fw.Flush(); err != nil {
				return consumed, 0, err
			}
		case Finish:
			if err := d.fw.Close(); err != nil {
				return consumed, 0, err
			}
			d.finished = true
		}
	}

	produced := copy(out, d.pending.Bytes())
	d.pending.Next(produced)
	d.totalOut += uint64(produced)

	return consumed, produced, nil
}

// Finished - implements Engine. True once the stream has been terminated
// and all pending output drained.
func (d *Deflator) Finished() bool {
	return d.finished && d.pending.Len() == 0
}

// TotalIn - implements Engine.
func (d *Deflator) TotalIn() uint64 {
	return d.totalIn
}

// TotalOut - implements Engine.
func (d *Deflator) TotalOut() uint64 {
	return d.totalOut
}

// Reset - implements Engine. Reuses the underlying compressor allocation.
func (d *Deflator) Reset() error {
	d.pending.Reset()
	d.fw.Reset(&d.pending)
	d.totalIn, d.totalOut = 0, 0
	d.finished = false

	return nil
}
