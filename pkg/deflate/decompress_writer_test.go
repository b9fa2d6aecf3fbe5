package deflate_test

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/neekrasov/flatestream/pkg/deflate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressWriterRoundTrip(t *testing.T) {
	t.Parallel()

	payload := randomBytes(61, 1<<20)
	compressed := compress(t, payload, 67)

	var dst bytes.Buffer
	dw := deflate.NewDecompressWriter(&dst)

	rng := rand.New(rand.NewSource(71))
	for rest := compressed; len(rest) > 0; {
		n := rng.Intn(len(rest)) + 1
		written, err := dw.Write(rest[:n])
		require.NoError(t, err, "Write should not return an error")
		require.Equal(t, n, written, "Write should consume its whole input")
		rest = rest[n:]
	}
	require.NoError(t, dw.Close(), "Close should not return an error")

	assert.Equal(t, payload, dst.Bytes(), "decoded sink should match the payload")
	assert.Equal(t, uint64(len(compressed)), dw.TotalIn(), "TotalIn should count compressed bytes")
	assert.Equal(t, uint64(len(payload)), dw.TotalOut(), "TotalOut should count decoded bytes")
}

func TestDecompressWriterTrailingData(t *testing.T) {
	t.Parallel()

	payload := []byte("payload before trailing bytes")
	compressed := compress(t, payload, 73)

	var dst bytes.Buffer
	dw := deflate.NewDecompressWriter(&dst)

	_, err := dw.Write(compressed)
	require.NoError(t, err, "Write should not return an error")

	// Bytes past the end of the stream are accepted and discarded.
	_, err = dw.Write([]byte("trailing garbage"))
	require.NoError(t, err, "writes past end of stream should be accepted")
	require.NoError(t, dw.Close(), "Close should not return an error")

	assert.Equal(t, payload, dst.Bytes(), "decoded sink should exclude trailing bytes")
	assert.Equal(t, uint64(len(compressed)), dw.TotalIn(),
		"TotalIn should stop at the end-of-stream offset")
}

func TestDecompressWriterTruncatedStream(t *testing.T) {
	t.Parallel()

	compressed := compress(t, bytes.Repeat([]byte("truncate me "), 1000), 79)

	dw := deflate.NewDecompressWriter(new(bytes.Buffer))
	_, err := dw.Write(compressed[:len(compressed)/2])
	require.NoError(t, err, "Write should not return an error")

	assert.ErrorIs(t, dw.Close(), io.ErrUnexpectedEOF,
		"closing a truncated stream should report an unexpected EOF")
	assert.NoError(t, dw.Close(), "second Close should be a no-op")
}

func TestDecompressWriterSinkError(t *testing.T) {
	t.Parallel()

	sinkErr := errors.New("some write error")
	compressed := compress(t, bytes.Repeat([]byte("sink failure "), 10000), 83)

	dw := deflate.NewDecompressWriter(errorSink{err: sinkErr})

	var err error
	for rest := compressed; len(rest) > 0 && err == nil; {
		n := min(len(rest), 4096)
		_, err = dw.Write(rest[:n])
		rest = rest[n:]
	}
	if err == nil {
		err = dw.Close()
	} else {
		_ = dw.Close()
	}
	assert.ErrorIs(t, err, sinkErr, "sink failures should surface to the caller")
}

// errorSink - fails every write with a fixed error.
type errorSink struct {
	err error
}

func (e errorSink) Write(p []byte) (int, error) {
	return 0, e.err
}

func TestDecompressWriterReset(t *testing.T) {
	t.Parallel()

	payload := []byte("reset equivalence")
	compressed := compress(t, payload, 89)

	dw := deflate.NewDecompressWriter(new(bytes.Buffer))

	_, err := dw.Write(compressed)
	require.NoError(t, err, "first Write should not return an error")

	old, err := dw.Reset(new(bytes.Buffer))
	require.NoError(t, err, "Reset should not return an error")
	assert.Equal(t, payload, old.(*bytes.Buffer).Bytes(),
		"Reset should finish the first stream into the old sink")
	assert.Zero(t, dw.TotalIn(), "Reset should clear TotalIn")
	assert.Zero(t, dw.TotalOut(), "Reset should clear TotalOut")

	_, err = dw.Write(compressed)
	require.NoError(t, err, "second Write should not return an error")
	require.NoError(t, dw.Close(), "Close should not return an error")

	assert.Equal(t, payload, dw.Inner().(*bytes.Buffer).Bytes(),
		"the new sink should hold the second stream's payload")
}

func TestDecompressWriterWriteAfterClose(t *testing.T) {
	t.Parallel()

	compressed := compress(t, []byte("done"), 97)

	dw := deflate.NewDecompressWriter(new(bytes.Buffer))
	_, err := dw.Write(compressed)
	require.NoError(t, err, "Write should not return an error")
	require.NoError(t, dw.Close(), "Close should not return an error")

	_, err = dw.Write([]byte("late"))
	assert.Error(t, err, "writes after Close should be rejected")
}
