package decompressors

import (
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// reference https://tukaani.org/xz/xz-file-format-1.0.4.txt
var magicBytesXz = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}

// Xz decodes .xz streams. Concatenated streams are read as one payload.
type Xz struct{}

func (Xz) Kind() CompressionType {
	return CompressionXz
}

func (Xz) Reader(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	return io.NopCloser(r), nil
}

func (Xz) Extension() string {
	return ".xz"
}
