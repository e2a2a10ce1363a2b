package engine

import (
	"context"
	"io"
)

// Sink receives encoded reports.
type Sink interface {
	Named
	Closer

	// Write stores data under the given file name.
	Write(ctx context.Context, name string, data io.Reader) error
}
