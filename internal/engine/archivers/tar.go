// Package archivers builds compressed tar archives in memory. The archive
// sink bundles reports with it and tests use it to produce fixtures.
package archivers

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/infracollect/untarxz/internal/engine/decompressors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Epoch is the modification time stamped on every entry so archives are
// reproducible.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// TarArchiver creates tar archives with optional compression.
type TarArchiver struct {
	buf         *bytes.Buffer
	compressor  io.WriteCloser
	tarWriter   *tar.Writer
	compression decompressors.CompressionType
	closed      bool
}

// NewTarArchiver creates a new tar archiver with the specified compression.
// Supported compression types: "xz", "lzma", "zstd", "gzip", "lz4", "none".
// If compression is empty, defaults to "xz".
func NewTarArchiver(compression string) (*TarArchiver, error) {
	ct := decompressors.CompressionType(compression)
	if ct == "" {
		ct = decompressors.CompressionXz
	}

	buf := new(bytes.Buffer)
	compressor, err := newCompressor(ct, buf)
	if err != nil {
		return nil, err
	}

	return &TarArchiver{
		buf:         buf,
		compressor:  compressor,
		tarWriter:   tar.NewWriter(compressor),
		compression: ct,
	}, nil
}

func newCompressor(ct decompressors.CompressionType, w io.Writer) (io.WriteCloser, error) {
	switch ct {
	case decompressors.CompressionXz:
		compressor, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return compressor, nil
	case decompressors.CompressionLzma:
		compressor, err := lzma.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create lzma writer: %w", err)
		}
		return compressor, nil
	case decompressors.CompressionZstd:
		compressor, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return compressor, nil
	case decompressors.CompressionGzip:
		return gzip.NewWriter(w), nil
	case decompressors.CompressionLz4:
		return lz4.NewWriter(w), nil
	case decompressors.CompressionNone:
		return &nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", ct)
	}
}

// AddFile adds a regular file to the tar archive.
func (a *TarArchiver) AddFile(ctx context.Context, filename string, data io.Reader) error {
	if err := a.check(ctx); err != nil {
		return err
	}

	content, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read file data: %w", err)
	}

	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     filename,
		Mode:     0644,
		Size:     int64(len(content)),
		ModTime:  Epoch,
	}

	if err := a.tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}

	if _, err := a.tarWriter.Write(content); err != nil {
		return fmt.Errorf("failed to write tar content: %w", err)
	}

	return nil
}

// AddDir adds a directory entry to the tar archive.
func (a *TarArchiver) AddDir(ctx context.Context, name string) error {
	return a.addHeader(ctx, &tar.Header{
		Typeflag: tar.TypeDir,
		Name:     name,
		Mode:     0755,
		ModTime:  Epoch,
	})
}

// AddSymlink adds a symbolic link entry to the tar archive.
func (a *TarArchiver) AddSymlink(ctx context.Context, name, target string) error {
	return a.addHeader(ctx, &tar.Header{
		Typeflag: tar.TypeSymlink,
		Name:     name,
		Linkname: target,
		Mode:     0777,
		ModTime:  Epoch,
	})
}

func (a *TarArchiver) addHeader(ctx context.Context, header *tar.Header) error {
	if err := a.check(ctx); err != nil {
		return err
	}

	if err := a.tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}

	return nil
}

func (a *TarArchiver) check(ctx context.Context) error {
	if a.closed {
		return fmt.Errorf("archiver is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	return nil
}

// Close finalizes the tar archive and returns the complete archive data.
func (a *TarArchiver) Close() ([]byte, error) {
	if a.closed {
		return nil, fmt.Errorf("archiver already closed")
	}
	a.closed = true

	// Close tar writer first
	if err := a.tarWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close tar writer: %w", err)
	}

	if err := a.compressor.Close(); err != nil {
		return nil, fmt.Errorf("failed to close compressor: %w", err)
	}

	return a.buf.Bytes(), nil
}

// Extension returns the file extension for this archive type.
func (a *TarArchiver) Extension() string {
	d, err := decompressors.New(string(a.compression))
	if err != nil {
		return ".tar"
	}
	return ".tar" + d.Extension()
}

// Compress compresses data as a whole with the given compression. It is used
// to wrap hand-crafted (e.g. truncated) tar streams.
func Compress(compression string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	compressor, err := newCompressor(decompressors.CompressionType(compression), &buf)
	if err != nil {
		return nil, err
	}

	if _, err := compressor.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("failed to close compressor: %w", err)
	}

	return buf.Bytes(), nil
}

// nopWriteCloser wraps a Writer to provide a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (n *nopWriteCloser) Close() error {
	return nil
}
