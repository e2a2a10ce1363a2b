package decompressors

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// reference: https://www.rfc-editor.org/rfc/rfc8878.html
var magicBytesZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}

type Zstd struct{}

func (Zstd) Kind() CompressionType {
	return CompressionZstd
}

// Reader decodes synchronously; the returned reader must be closed to release
// the decoder.
func (Zstd) Reader(src io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	return d.IOReadCloser(), nil
}

func (Zstd) Extension() string {
	return ".zst"
}
