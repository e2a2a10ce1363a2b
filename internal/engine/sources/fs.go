package sources

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/infracollect/untarxz/internal/engine"
	"github.com/spf13/afero"
)

const FilesystemKind = "filesystem"

type FilesystemConfig struct {
	Path string
}

type FilesystemSource struct {
	fs   afero.Fs
	path string
}

func NewFilesystemSource(fs afero.Fs, path string) engine.Source {
	return &FilesystemSource{fs: fs, path: path}
}

// NewFilesystemSourceFromConfig reads from the OS filesystem, relative paths
// being resolved against the working directory.
func NewFilesystemSourceFromConfig(cfg FilesystemConfig) (engine.Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	path := filepath.Clean(cfg.Path)
	if !filepath.IsAbs(path) {
		rootDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(rootDir, path)
	}

	return NewFilesystemSource(afero.NewOsFs(), path), nil
}

func (s *FilesystemSource) Name() string {
	return fmt.Sprintf("filesystem(%s)", s.path)
}

func (s *FilesystemSource) Kind() string {
	return FilesystemKind
}

func (s *FilesystemSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", s.path)
	}

	return f, nil
}
