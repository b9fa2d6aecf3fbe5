package codec

import "errors"

// Mode - controls how the engine treats the current Process call.
type Mode int

const (
	// NoFlush - regular streaming: consume input, emit output as it is produced.
	NoFlush Mode = iota
	// SyncFlush - emit all pending output followed by a sync-flush boundary,
	// leaving the stream open for further input.
	SyncFlush
	// Finish - terminate the stream; no more input will ever be supplied.
	Finish
)

var (
	// ErrFinished - returned when input is supplied after the stream
	// has been terminated.
	ErrFinished = errors.New("codec: stream already finished")
)

// Engine - a chunked codec driven incrementally by the pump. A single call
// consumes some prefix of in, writes some bytes into out and reports both
// counts. The engine never consumes input it cannot buffer, and never
// produces more than len(out) bytes.
type Engine interface {
	// Process - performs one incremental step of the codec.
	Process(in, out []byte, mode Mode) (consumed, produced int, err error)
	// Finished - reports whether the engine has reached end of stream and
	// drained all pending output.
	Finished() bool
	// TotalIn - total bytes of input consumed since creation or last Reset.
	TotalIn() uint64
	// TotalOut - total bytes of output produced since creation or last Reset.
	TotalOut() uint64
	// Reset - returns the engine to its initial state without reallocating,
	// ready to process a fresh independent stream.
	Reset() error
}
