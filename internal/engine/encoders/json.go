package encoders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/infracollect/untarxz/internal/engine"
)

const JSONKind = "json"

// JSONEncoder implements engine.Encoder for JSON format.
type JSONEncoder struct {
	indent string
}

// NewJSONEncoder creates a JSON encoder. An empty indent produces compact output.
func NewJSONEncoder(indent string) engine.Encoder {
	return &JSONEncoder{
		indent: indent,
	}
}

func (e *JSONEncoder) Encode(ctx context.Context, report engine.Report) (io.Reader, error) {
	var buff bytes.Buffer
	encoder := json.NewEncoder(&buff)
	if e.indent != "" {
		encoder.SetIndent("", e.indent)
	}

	if err := encoder.Encode(report); err != nil {
		return nil, fmt.Errorf("failed to encode report as JSON: %w", err)
	}

	return &buff, nil
}

// FileExtension returns "json".
func (e *JSONEncoder) FileExtension() string {
	return "json"
}
