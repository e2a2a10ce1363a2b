// Package encoders turns inspection reports into bytes.
package encoders

import (
	"fmt"

	"github.com/infracollect/untarxz/internal/engine"
)

// Formats lists the accepted values for New.
var Formats = []string{JSONKind, YAMLKind}

// New returns the encoder for format. The indent only applies to JSON.
func New(format, indent string) (engine.Encoder, error) {
	switch format {
	case JSONKind, "":
		return NewJSONEncoder(indent), nil
	case YAMLKind:
		return NewYAMLEncoder(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (available: %v)", format, Formats)
	}
}
