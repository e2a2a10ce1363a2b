package encoders

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/infracollect/untarxz/internal/engine"
)

const YAMLKind = "yaml"

// YAMLEncoder implements engine.Encoder for YAML format.
type YAMLEncoder struct{}

func NewYAMLEncoder() engine.Encoder {
	return &YAMLEncoder{}
}

func (e *YAMLEncoder) Encode(ctx context.Context, report engine.Report) (io.Reader, error) {
	var buff bytes.Buffer
	encoder := yaml.NewEncoder(&buff, yaml.IndentSequence(true))
	if err := encoder.EncodeContext(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to encode report as YAML: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode report as YAML: %w", err)
	}

	return &buff, nil
}

// FileExtension returns "yaml".
func (e *YAMLEncoder) FileExtension() string {
	return "yaml"
}
