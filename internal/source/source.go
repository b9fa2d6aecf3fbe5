// Package source provides the buffered input window the stream pump and
// the decompress engine read from: a bufio-backed view over a replaceable
// reader, with explicit cursor control and in-place stream swapping.
package source

import (
	"bufio"
	"io"
)

// DefaultBufferSize - window size used when none is configured.
const DefaultBufferSize = 32 << 10

// Source - buffered window over a replaceable reader. Bytes before the
// cursor are consumed and never re-read; Replace swaps the underlying
// stream and discards any buffered bytes of the previous one.
type Source struct {
	r  io.Reader
	br *bufio.Reader
}

// New - creates a Source over r with the given window size.
func New(r io.Reader, size int) *Source {
	if size <= 0 {
		size = DefaultBufferSize
	}

	return &Source{r: r, br: bufio.NewReaderSize(r, size)}
}

// Fill - returns the current unread window, refilling from the underlying
// reader when it is empty. Returns io.EOF once the stream is exhausted.
func (s *Source) Fill() ([]byte, error) {
	if s.br.Buffered() == 0 {
		if _, err := s.br.Peek(1); err != nil {
			return nil, err
		}
	}

	return s.br.Peek(s.br.Buffered())
}

// Peek - returns the current unread window without triggering a refill.
func (s *Source) Peek() []byte {
	window, _ := s.br.Peek(s.br.Buffered())

	return window
}

// Discard - advances the cursor past n consumed bytes.
func (s *Source) Discard(n int) (int, error) {
	return s.br.Discard(n)
}

// Buffered - number of unread bytes in the window.
func (s *Source) Buffered() int {
	return s.br.Buffered()
}

// Replace - swaps the underlying stream, returning the old one. Buffered
// bytes belonging to the old stream are dropped.
func (s *Source) Replace(r io.Reader) io.Reader {
	old := s.r
	s.r = r
	s.br.Reset(r)

	return old
}

// Inner - the underlying stream.
func (s *Source) Inner() io.Reader {
	return s.r
}

// Read - implements io.Reader over the window.
func (s *Source) Read(p []byte) (int, error) {
	return s.br.Read(p)
}

// ReadByte - implements io.ByteReader over the window.
func (s *Source) ReadByte() (byte, error) {
	return s.br.ReadByte()
}
