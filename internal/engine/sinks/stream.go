package sinks

import (
	"context"
	"fmt"
	"io"
	"path"
)

const StreamKind = "stream"

const yamlDocumentSeparator = "---\n"

// StreamSink writes reports one after another to w, usually stdout. Each
// report ends with a newline. YAML reports after the first are preceded by a
// document separator.
type StreamSink struct {
	w       io.Writer
	reports int
}

func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Name() string {
	return "stream"
}

func (s *StreamSink) Kind() string {
	return StreamKind
}

// Reports returns how many reports were written so far.
func (s *StreamSink) Reports() int {
	return s.reports
}

func (s *StreamSink) Write(ctx context.Context, name string, data io.Reader) error {
	if s.reports > 0 && isYAMLReport(name) {
		if _, err := io.WriteString(s.w, yamlDocumentSeparator); err != nil {
			return fmt.Errorf("failed to write document separator: %w", err)
		}
	}

	tw := &tailWriter{w: s.w}
	if _, err := io.Copy(tw, data); err != nil {
		return fmt.Errorf("failed to copy report %s: %w", name, err)
	}
	if tw.n > 0 && tw.last != '\n' {
		if _, err := io.WriteString(s.w, "\n"); err != nil {
			return fmt.Errorf("failed to terminate report %s: %w", name, err)
		}
	}

	s.reports++
	return nil
}

func (s *StreamSink) Close(ctx context.Context) error {
	return nil
}

func isYAMLReport(name string) bool {
	switch path.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// tailWriter remembers the last byte written through it.
type tailWriter struct {
	w    io.Writer
	n    int64
	last byte
}

func (t *tailWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.n += int64(n)
		t.last = p[n-1]
	}
	return n, err
}
