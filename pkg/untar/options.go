package untar

import (
	"github.com/infracollect/untarxz/internal/engine/decompressors"
	"go.uber.org/zap"
)

// Option configures Decode, NewReader and Walk.
type Option func(*config)

type config struct {
	logger              *zap.Logger
	compression         string
	maxDecompressedSize int64
	maxEntries          int
	regularOnly         bool
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:      zap.NewNop(),
		compression: string(decompressors.CompressionAuto),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger used for debug output. Decoder diagnostics that
// DecodeError does not carry are logged here.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCompression forces the compression of the input instead of detecting
// it. Accepted values are listed by decompressors.Kinds.
func WithCompression(compression string) Option {
	return func(c *config) {
		c.compression = compression
	}
}

// WithMaxDecompressedSize fails decoding with LimitExceeded once more than n
// bytes have been decompressed. Zero disables the limit.
func WithMaxDecompressedSize(n int64) Option {
	return func(c *config) {
		c.maxDecompressedSize = n
	}
}

// WithMaxEntries fails decoding with LimitExceeded when the archive holds more
// than n entries. Zero disables the limit.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		c.maxEntries = n
	}
}

// WithRegularFilesOnly skips directories, links and special files.
func WithRegularFilesOnly() Option {
	return func(c *config) {
		c.regularOnly = true
	}
}
