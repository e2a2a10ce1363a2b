package untar

import (
	"bufio"
	"errors"
	"io"

	"github.com/infracollect/untarxz/internal/engine/decompressors"
	"go.uber.org/zap"
)

var (
	errSizeLimit      = errors.New("decompressed size limit exceeded")
	errTooManyEntries = errors.New("entry limit exceeded")
)

// stream sits between the decompressor and the tar reader. It enforces the
// size limit and remembers the first failure of the decompressor so later tar
// errors can be attributed to the right stage.
type stream struct {
	r   io.Reader
	n   int64
	max int64
	err error
}

func (s *stream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	n, err := s.r.Read(p)
	s.n += int64(n)
	if s.max > 0 && s.n > s.max {
		s.err = errSizeLimit
		return n - int(s.n-s.max), s.err
	}

	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

// openStream selects the decompressor for r and opens it. Configuration
// problems come back as plain errors, decoder failures as DecodeError.
func openStream(cfg config, r io.Reader) (io.ReadCloser, decompressors.CompressionType, error) {
	// bufio.NewReader reuses r when it already is a large enough *bufio.Reader.
	br := bufio.NewReader(r)

	dec, err := decompressors.Select(br, cfg.compression)
	if err != nil {
		return nil, "", err
	}

	rc, err := dec.Reader(br)
	if err != nil {
		cfg.logger.Debug("failed to open decompression stream", zap.String("compression", string(dec.Kind())), zap.Error(err))
		return nil, "", &DecodeError{Kind: DecompressionFailure, Entry: -1}
	}

	return rc, dec.Kind(), nil
}
