package decompressors

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/ulikunitz/xz/lzma"
)

// LZMA-alone header: properties byte, dictionary size, uncompressed size.
const lzmaHeaderSize = 13

// Larger declared sizes are almost certainly not an LZMA-alone header.
const lzmaMaxDeclaredSize = 1 << 38

var errLzmaTrailingData = errors.New("trailing data after lzma stream")

// Lzma decodes LZMA-alone streams, as written by `tar --lzma`.
//
// The format has no magic bytes, so the header is checked for plausible
// values before decoding and the input must end with the stream.
type Lzma struct{}

func (Lzma) Kind() CompressionType {
	return CompressionLzma
}

func (Lzma) Reader(src io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(src)

	header, err := br.Peek(lzmaHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read lzma header: %w", err)
	}
	if err := checkLzmaHeader(header); err != nil {
		return nil, err
	}

	r, err := lzma.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create lzma reader: %w", err)
	}
	return io.NopCloser(&lzmaReader{r: r, src: br}), nil
}

func (Lzma) Extension() string {
	return ".lzma"
}

func checkLzmaHeader(header []byte) error {
	if props := header[0]; props >= 9*5*5 {
		return fmt.Errorf("invalid lzma properties byte 0x%02x", props)
	}

	dictSize := binary.LittleEndian.Uint32(header[1:5])
	if !validLzmaDictSize(dictSize) {
		return fmt.Errorf("invalid lzma dictionary size %d", dictSize)
	}

	size := int64(binary.LittleEndian.Uint64(header[5:13]))
	if size != -1 && (size < 0 || size >= lzmaMaxDeclaredSize) {
		return fmt.Errorf("invalid lzma uncompressed size %d", size)
	}
	return nil
}

// validLzmaDictSize accepts 2^n and 2^n + 2^(n-1), the sizes lzma encoders
// write, plus the all-ones marker.
func validLzmaDictSize(size uint32) bool {
	if size == math.MaxUint32 {
		return true
	}
	rest := size >> bits.TrailingZeros32(size)
	return rest == 1 || rest == 3
}

type lzmaReader struct {
	r   io.Reader
	src io.ByteReader
}

func (l *lzmaReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if err != io.EOF {
		return n, err
	}

	// Stream ended with a known size or an end marker; nothing may follow.
	if _, rerr := l.src.ReadByte(); rerr != io.EOF {
		if rerr == nil {
			rerr = errLzmaTrailingData
		}
		return n, rerr
	}
	return n, io.EOF
}
