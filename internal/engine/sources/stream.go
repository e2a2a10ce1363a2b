package sources

import (
	"context"
	"io"

	"github.com/infracollect/untarxz/internal/engine"
)

const StreamKind = "stdin"

type StreamConfig struct {
	Reader io.Reader
}

// StreamSource reads the archive from an already open stream such as stdin.
// Closing the returned reader does not close the stream.
type StreamSource struct {
	r io.Reader
}

func NewStreamSource(r io.Reader) engine.Source {
	return &StreamSource{r: r}
}

func (s *StreamSource) Name() string {
	return "stream"
}

func (s *StreamSource) Kind() string {
	return StreamKind
}

func (s *StreamSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(s.r), nil
}
