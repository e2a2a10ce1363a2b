package decompressors

import "io"

// None passes the input through untouched, for plain tar streams.
type None struct{}

func (None) Kind() CompressionType {
	return CompressionNone
}

func (None) Reader(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(src), nil
}

func (None) Extension() string {
	return ""
}
