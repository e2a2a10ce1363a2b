package untar

import (
	"archive/tar"
	"errors"
	"io"

	"go.uber.org/zap"
)

// Entry describes one tar record.
type Entry struct {
	// Index is the zero-based position of the entry in the archive, counting
	// skipped entries.
	Index int
	Name  string
	Size  int64
	// Type is the tar type flag (tar.TypeReg, tar.TypeDir, ...).
	Type byte
}

// IsRegular reports whether the entry is a regular file.
func (e Entry) IsRegular() bool {
	return e.Type == tar.TypeReg
}

// Reader decodes a compressed tar archive one entry at a time without
// materializing the decompressed payload.
type Reader struct {
	cfg         config
	logger      *zap.Logger
	src         *stream
	closer      io.Closer
	tr          *tar.Reader
	compression string
	next        int
	current     int
	err         error
}

// NewReader opens the decompression stream of r. The compression is
// detected from the stream header unless WithCompression is given.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	cfg := newConfig(opts)

	rc, compression, err := openStream(cfg, r)
	if err != nil {
		return nil, err
	}

	return newReader(cfg, rc, string(compression), cfg.maxDecompressedSize), nil
}

func newReader(cfg config, rc io.ReadCloser, compression string, maxSize int64) *Reader {
	src := &stream{r: rc, max: maxSize}
	return &Reader{
		cfg:         cfg,
		logger:      cfg.logger.With(zap.String("compression", compression)),
		src:         src,
		closer:      rc,
		tr:          tar.NewReader(src),
		compression: compression,
		current:     -1,
	}
}

// Compression returns the compression the archive is decoded with.
func (r *Reader) Compression() string {
	return r.compression
}

// Next advances to the next entry. It returns io.EOF once the archive is
// exhausted. Unread content of the previous entry is skipped.
func (r *Reader) Next() (Entry, error) {
	if r.err != nil {
		return Entry{}, r.err
	}

	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			// The tar end marker can precede the end of the compressed
			// stream. Read the rest so the decompressor verifies its
			// checksums and trailer.
			if _, derr := io.Copy(io.Discard, r.src); derr != nil {
				return Entry{}, r.fail(DecompressionFailure, -1, derr)
			}
			r.err = io.EOF
			return Entry{}, io.EOF
		}
		if err != nil {
			return Entry{}, r.fail(ArchiveFormatFailure, r.next, err)
		}

		index := r.next
		r.next++

		if r.cfg.maxEntries > 0 && r.next > r.cfg.maxEntries {
			return Entry{}, r.fail(LimitExceeded, index, errTooManyEntries)
		}

		entry := Entry{
			Index: index,
			Name:  hdr.Name,
			Size:  hdr.Size,
			Type:  hdr.Typeflag,
		}

		if r.cfg.regularOnly && !entry.IsRegular() {
			r.logger.Debug("skipping non-regular entry", zap.Int("entry", index), zap.String("name", hdr.Name))
			continue
		}

		r.current = index
		return entry, nil
	}
}

// Read reads from the current entry. It returns io.EOF at the end of the
// entry's content.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	n, err := r.tr.Read(p)
	if err != nil && err != io.EOF {
		return n, r.fail(FileReadFailure, r.current, err)
	}
	return n, err
}

// Close releases the decompressor. It does not close the underlying input.
func (r *Reader) Close() error {
	return r.closer.Close()
}

// fail records a sticky DecodeError. A failure of the decompression stream
// takes precedence over the tar-level kind since it is the root cause.
func (r *Reader) fail(kind ErrorKind, entry int, cause error) error {
	switch {
	case errors.Is(r.src.err, errSizeLimit):
		kind, cause = LimitExceeded, r.src.err
	case r.src.err != nil:
		kind, cause = DecompressionFailure, r.src.err
	}

	r.logger.Debug("failed to decode archive",
		zap.Stringer("kind", kind),
		zap.Int("entry", entry),
		zap.Error(cause),
	)

	r.err = &DecodeError{Kind: kind, Entry: entry}
	return r.err
}
