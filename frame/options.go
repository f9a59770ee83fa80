package frame

// config holds the configured options after applying a number of Option
// funcs, the same pattern ipld-go-car/v2/options.go uses for reader/writer
// construction.
type config struct {
	MaxFrameSize         uint32
	Checksum             bool
	CompressionThreshold uint32
}

func defaultConfig() config {
	return config{
		MaxFrameSize: 1 << 26, // 64 MiB
	}
}

// Option configures a Codec.
type Option func(*config)

// WithMaxFrameSize bounds the payload length a Codec will accept when
// splitting a stream into frames; frames whose declared length exceeds this
// are rejected rather than read into memory.
func WithMaxFrameSize(n uint32) Option {
	return func(c *config) {
		c.MaxFrameSize = n
	}
}

// WithChecksum appends and verifies a trailing XOR checksum byte on every
// frame.
func WithChecksum() Option {
	return func(c *config) {
		c.Checksum = true
	}
}

// WithCompressionThreshold enables DEFLATE compression for payloads at or
// above n bytes; 0 (the default) disables compression.
func WithCompressionThreshold(n uint32) Option {
	return func(c *config) {
		c.CompressionThreshold = n
	}
}
