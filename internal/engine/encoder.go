package engine

import (
	"context"
	"io"
)

// Encoder transforms a report into a specific format (JSON, YAML).
type Encoder interface {
	// Encode encodes the report to a reader.
	Encode(ctx context.Context, report Report) (io.Reader, error)

	// FileExtension returns extension without dot (e.g., "json").
	FileExtension() string
}
