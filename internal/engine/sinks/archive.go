package sinks

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/infracollect/untarxz/internal/engine"
	"golang.org/x/crypto/sha3"
)

// ManifestName is the archive entry listing the SHA3-384 digest of every
// report, in the format of sha3sum -a 384.
const ManifestName = "SHA3-384SUMS"

var errArchiveClosed = errors.New("archive already finalized")

// Archiver collects files into a single archive.
type Archiver interface {
	AddFile(ctx context.Context, filename string, data io.Reader) error
	Close() ([]byte, error)
	Extension() string
}

// ArchiveSink bundles every report into one archive. Close appends a digest
// manifest, then hands the archive to the inner sink under baseName plus the
// archiver extension, e.g. "nightly.tar.xz".
type ArchiveSink struct {
	inner       engine.Sink
	archiver    Archiver
	archiveName string
	manifest    strings.Builder
	reports     []string
	closed      bool
}

func NewArchiveSink(inner engine.Sink, archiver Archiver, baseName string) *ArchiveSink {
	return &ArchiveSink{
		inner:       inner,
		archiver:    archiver,
		archiveName: baseName + archiver.Extension(),
	}
}

func (s *ArchiveSink) Name() string {
	return fmt.Sprintf("archive(%s)->%s", s.archiveName, s.inner.Name())
}

func (s *ArchiveSink) Kind() string {
	return "archive"
}

// Reports returns the names of the reports added so far, in order.
func (s *ArchiveSink) Reports() []string {
	return s.reports
}

func (s *ArchiveSink) Write(ctx context.Context, name string, data io.Reader) error {
	if s.closed {
		return fmt.Errorf("failed to add %s: %w", name, errArchiveClosed)
	}
	if name == ManifestName {
		return fmt.Errorf("report name %s is reserved for the archive manifest", name)
	}

	h := sha3.New384()
	if err := s.archiver.AddFile(ctx, name, io.TeeReader(data, h)); err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}

	fmt.Fprintf(&s.manifest, "%s  %s\n", hex.EncodeToString(h.Sum(nil)), name)
	s.reports = append(s.reports, name)
	return nil
}

// Close writes the manifest, finalizes the archive and writes it to the inner
// sink. An archive without reports carries no manifest.
func (s *ArchiveSink) Close(ctx context.Context) error {
	if s.closed {
		return errArchiveClosed
	}
	s.closed = true

	if len(s.reports) > 0 {
		if err := s.archiver.AddFile(ctx, ManifestName, strings.NewReader(s.manifest.String())); err != nil {
			return fmt.Errorf("failed to add manifest to archive: %w", err)
		}
	}

	data, err := s.archiver.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if err := s.inner.Write(ctx, s.archiveName, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", s.archiveName, s.inner.Name(), err)
	}

	if err := s.inner.Close(ctx); err != nil {
		return fmt.Errorf("failed to close inner sink: %w", err)
	}

	return nil
}
