package decompressors

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// reference https://github.com/lz4/lz4/blob/dev/doc/lz4_Frame_format.md
var magicBytesLz4 = []byte{0x04, 0x22, 0x4D, 0x18}

type Lz4 struct{}

func (Lz4) Kind() CompressionType {
	return CompressionLz4
}

// Reader never fails up front: lz4 validates the frame header on first read.
func (Lz4) Reader(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(src)), nil
}

func (Lz4) Extension() string {
	return ".lz4"
}
