package deflate

// Option - configures an adapter.
type Option func(*options)

type options struct {
	bufferSize  int
	scratchSize int
}

// WithBufferSize - configures the source window size of a reader-shaped
// adapter. The window is never grown afterwards.
func WithBufferSize(n int) Option {
	return func(o *options) {
		o.bufferSize = n
	}
}

// WithScratchSize - configures the pending output region of a
// writer-shaped adapter.
func WithScratchSize(n int) Option {
	return func(o *options) {
		o.scratchSize = n
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
