package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/infracollect/untarxz/internal/engine"
	"github.com/spf13/afero"
)

const FilesystemKind = "filesystem"

// FilesystemSink writes reports below the root of fs.
type FilesystemSink struct {
	fs afero.Fs
}

func NewFilesystemSink(fs afero.Fs) engine.Sink {
	return &FilesystemSink{fs: fs}
}

// NewFilesystemSinkFromPath roots the sink at path on the OS filesystem,
// creating the directory when missing.
func NewFilesystemSinkFromPath(path string) (engine.Sink, error) {
	return newFilesystemSinkFromPath(afero.NewOsFs(), path)
}

func newFilesystemSinkFromPath(base afero.Fs, path string) (engine.Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	cleanPath := filepath.Clean(path)
	if err := base.MkdirAll(cleanPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cleanPath, err)
	}

	return NewFilesystemSink(afero.NewBasePathFs(base, cleanPath)), nil
}

func (s *FilesystemSink) Name() string {
	return fmt.Sprintf("filesystem(%s)", s.fs.Name())
}

func (s *FilesystemSink) Kind() string {
	return FilesystemKind
}

func (s *FilesystemSink) Write(ctx context.Context, path string, data io.Reader) (err error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := s.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err = io.Copy(f, data); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

func (s *FilesystemSink) Close(ctx context.Context) error {
	return nil
}
