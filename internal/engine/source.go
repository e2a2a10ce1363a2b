package engine

import (
	"context"
	"io"
)

// Source provides the compressed archive bytes.
type Source interface {
	Named

	// Open returns a reader over the archive. The caller closes it.
	Open(ctx context.Context) (io.ReadCloser, error)
}
