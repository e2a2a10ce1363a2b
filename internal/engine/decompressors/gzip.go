package decompressors

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

var magicBytesGzip = []byte{0x1F, 0x8B}

type Gzip struct{}

func (Gzip) Kind() CompressionType {
	return CompressionGzip
}

func (Gzip) Reader(src io.Reader) (io.ReadCloser, error) {
	r, err := gzip.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return r, nil
}

func (Gzip) Extension() string {
	return ".gz"
}
