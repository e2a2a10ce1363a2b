package engine

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/infracollect/untarxz/pkg/untar"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

// Pipeline streams an archive from a source and digests every entry.
type Pipeline struct {
	logger *zap.Logger
	source Source
	opts   []untar.Option
}

func NewPipeline(logger *zap.Logger, source Source, opts ...untar.Option) *Pipeline {
	return &Pipeline{
		logger: logger,
		source: source,
		opts:   opts,
	}
}

func (p *Pipeline) Source() Source {
	return p.source
}

// Run decodes the archive and returns its report. Decode failures keep their
// untar kind so callers can match them with errors.Is.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("context cancelled before opening source: %w", err)
	}

	logger := p.logger.With(zap.String("source", p.source.Name()))

	rc, err := p.source.Open(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open source %s: %w", p.source.Name(), err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logger.Warn("failed to close source", zap.Error(err))
		}
	}()

	opts := append([]untar.Option{untar.WithLogger(logger.Named("untar"))}, p.opts...)
	r, err := untar.NewReader(bufio.NewReader(rc), opts...)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	report := Report{
		Source:      p.source.Name(),
		Compression: r.Compression(),
		Entries:     []EntryDigest{},
	}

	for {
		if err := ctx.Err(); err != nil {
			return Report{}, fmt.Errorf("context cancelled while reading archive at entry %d: %w", len(report.Entries), err)
		}

		entry, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Report{}, fmt.Errorf("failed to read archive entry: %w", err)
		}

		h := sha3.New384()
		n, err := io.Copy(h, r)
		if err != nil {
			return Report{}, fmt.Errorf("failed to read entry '%s': %w", entry.Name, err)
		}

		report.Entries = append(report.Entries, EntryDigest{
			Index:    entry.Index,
			Name:     entry.Name,
			Type:     EntryTypeName(entry.Type),
			Size:     n,
			SHA3_384: hex.EncodeToString(h.Sum(nil)),
		})
		report.TotalSize += n

		logger.Debug("digested entry", zap.Int("entry", entry.Index), zap.String("name", entry.Name), zap.Int64("size", n))
	}

	logger.Info("archive inspected",
		zap.String("compression", report.Compression),
		zap.Int("entries", len(report.Entries)),
		zap.Int64("total_size", report.TotalSize),
	)

	return report, nil
}
