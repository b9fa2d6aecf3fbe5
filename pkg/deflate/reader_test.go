package deflate_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"

	"github.com/neekrasov/flatestream/pkg/deflate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderZeroLengthReadAfterDrain(t *testing.T) {
	t.Parallel()

	compressed := compress(t, []byte("fully drained"), 37)

	r := deflate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	raw, err := io.ReadAll(r)
	require.NoError(t, err, "draining should not return an error")
	require.Equal(t, []byte("fully drained"), raw, "decoded stream should match input")

	in, out := r.TotalIn(), r.TotalOut()

	n, err := r.Read(nil)
	require.NoError(t, err, "zero-length read should not return an error")
	assert.Zero(t, n, "zero-length read should produce nothing")
	assert.Equal(t, in, r.TotalIn(), "zero-length read should not advance TotalIn")
	assert.Equal(t, out, r.TotalOut(), "zero-length read should not advance TotalOut")
}

func TestReaderTrailingDataTolerance(t *testing.T) {
	t.Parallel()

	payload := []byte("valid stream payload")
	compressed := compress(t, payload, 41)
	withTrailing := append(append([]byte{}, compressed...), "arbitrary trailing bytes"...)

	r := deflate.NewReader(bytes.NewReader(withTrailing))
	defer r.Close()

	raw, err := io.ReadAll(r)
	require.NoError(t, err, "decoding should ignore trailing bytes")
	assert.Equal(t, payload, raw, "decoded stream should hold exactly the payload")
	assert.Equal(t, uint64(len(compressed)), r.TotalIn(),
		"TotalIn should stop at the end-of-stream offset")

	for i := 0; i < 3; i++ {
		n, err := r.Read(make([]byte, 8))
		assert.Zero(t, n, "reads past end of stream should produce nothing")
		assert.ErrorIs(t, err, io.EOF, "reads past end of stream should report io.EOF")
	}
}

func TestReaderCorruptInput(t *testing.T) {
	t.Parallel()

	// 0x06 encodes the reserved block type 3.
	r := deflate.NewReader(bytes.NewReader([]byte{0x06, 0x00, 0x00, 0x00}))
	defer r.Close()

	_, err := io.ReadAll(r)
	var corrupt flate.CorruptInputError
	assert.ErrorAs(t, err, &corrupt, "malformed input should surface as a corruption error")
}

func TestReaderPropagatesSourceError(t *testing.T) {
	t.Parallel()

	sourceErr := errors.New("some read error")
	r := deflate.NewReader(failingReader{err: sourceErr})
	defer r.Close()

	_, err := io.ReadAll(r)
	assert.ErrorIs(t, err, sourceErr, "underlying I/O errors should propagate verbatim")
}

// failingReader - fails every read with a fixed error.
type failingReader struct {
	err error
}

func (f failingReader) Read(p []byte) (int, error) {
	return 0, f.err
}

func TestReaderResetSwapsStream(t *testing.T) {
	t.Parallel()

	first := bytes.NewReader(compress(t, []byte("first"), 43))
	second := bytes.NewReader(compress(t, []byte("second"), 47))

	r := deflate.NewReader(first)
	defer r.Close()

	raw, err := io.ReadAll(r)
	require.NoError(t, err, "first stream should decode")
	require.Equal(t, []byte("first"), raw, "first decode should match input")

	old, err := r.Reset(second)
	require.NoError(t, err, "Reset should not return an error")
	assert.Equal(t, io.Reader(first), old, "Reset should return the previous stream")

	raw, err = io.ReadAll(r)
	require.NoError(t, err, "second stream should decode")
	assert.Equal(t, []byte("second"), raw, "second decode should match input")
}

func TestReaderPassThroughWrite(t *testing.T) {
	t.Parallel()

	stream := new(bytes.Buffer)
	r := deflate.NewReader(stream)
	defer r.Close()

	n, err := r.Write([]byte("raw"))
	require.NoError(t, err, "pass-through write should not return an error")
	assert.Equal(t, 3, n, "pass-through write should forward all bytes")
	assert.Equal(t, "raw", stream.String(), "pass-through should bypass the codec")

	ro := deflate.NewReader(bytes.NewReader(nil))
	defer ro.Close()
	_, err = ro.Write([]byte("raw"))
	assert.ErrorIs(t, err, deflate.ErrNotWritable,
		"pass-through write should fail when the stream is read-only")
}

func TestReaderSmallWindow(t *testing.T) {
	t.Parallel()

	payload := randomBytes(53, 1<<18)
	compressed := compress(t, payload, 59)

	r := deflate.NewReader(bytes.NewReader(compressed), deflate.WithBufferSize(64))
	defer r.Close()

	raw, err := io.ReadAll(r)
	require.NoError(t, err, "decoding through a tiny window should not return an error")
	assert.Equal(t, payload, raw, "decoded stream should match input")
}
