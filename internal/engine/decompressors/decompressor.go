package decompressors

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"
)

// CompressionType defines supported compression algorithms.
type CompressionType string

const (
	CompressionAuto CompressionType = "auto"
	CompressionXz   CompressionType = "xz"
	CompressionLzma CompressionType = "lzma"
	CompressionZstd CompressionType = "zstd"
	CompressionGzip CompressionType = "gzip"
	CompressionLz4  CompressionType = "lz4"
	CompressionNone CompressionType = "none"
)

// HeaderSize is the number of leading bytes Detect needs to recognize every
// supported format.
const HeaderSize = 6

// Decompressor turns a compressed stream into its decoded bytes.
type Decompressor interface {
	// Kind returns the compression handled by this decompressor.
	Kind() CompressionType

	// Reader returns a reader yielding the decompressed content of src.
	Reader(src io.Reader) (io.ReadCloser, error)

	// Extension returns the file extension for this compression (e.g., ".xz").
	Extension() string
}

// UnsupportedCompressionError is returned when a compression name is not known.
type UnsupportedCompressionError struct {
	Compression string
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("unsupported compression type %q (available: %v)", e.Compression, Kinds())
}

// Kinds returns every accepted compression name, sorted.
func Kinds() []string {
	kinds := []string{
		string(CompressionAuto),
		string(CompressionXz),
		string(CompressionLzma),
		string(CompressionZstd),
		string(CompressionGzip),
		string(CompressionLz4),
		string(CompressionNone),
	}
	slices.Sort(kinds)
	return kinds
}

// New creates the decompressor for the given compression.
// "auto" is not accepted here since it needs the stream header, see Select.
func New(compression string) (Decompressor, error) {
	switch CompressionType(compression) {
	case CompressionXz:
		return Xz{}, nil
	case CompressionLzma:
		return Lzma{}, nil
	case CompressionZstd:
		return Zstd{}, nil
	case CompressionGzip:
		return Gzip{}, nil
	case CompressionLz4:
		return Lz4{}, nil
	case CompressionNone:
		return None{}, nil
	default:
		return nil, &UnsupportedCompressionError{Compression: compression}
	}
}

// Select returns the decompressor for compression. When compression is empty
// or "auto" the leading bytes of br are inspected without consuming them.
func Select(br *bufio.Reader, compression string) (Decompressor, error) {
	ct := CompressionType(compression)
	if ct != "" && ct != CompressionAuto {
		return New(compression)
	}

	// A short or failing peek still yields the bytes that were available; the
	// decoder reports the underlying read error itself.
	header, _ := br.Peek(HeaderSize)
	return New(string(Detect(header)))
}

// Detect picks a compression from the leading bytes of a stream.
// LZMA-alone streams carry no magic, so anything unrecognized is assumed to be
// one.
func Detect(header []byte) CompressionType {
	switch {
	case bytes.HasPrefix(header, magicBytesXz):
		return CompressionXz
	case bytes.HasPrefix(header, magicBytesZstd):
		return CompressionZstd
	case bytes.HasPrefix(header, magicBytesGzip):
		return CompressionGzip
	case bytes.HasPrefix(header, magicBytesLz4):
		return CompressionLz4
	default:
		return CompressionLzma
	}
}
