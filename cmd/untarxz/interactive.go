package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

type interactiveCtxKeyType struct{}

var interactiveCtxKey = interactiveCtxKeyType{}

func isInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func withInteractive(ctx context.Context, interactive bool) context.Context {
	return context.WithValue(ctx, interactiveCtxKey, interactive)
}

func isInteractive(ctx context.Context) bool {
	interactive, ok := ctx.Value(interactiveCtxKey).(bool)
	if !ok {
		return false
	}
	return interactive
}

// stdinReader returns os.Stdin unless it is a terminal, where nobody is
// going to type a compressed archive.
func stdinReader(ctx context.Context) (io.Reader, error) {
	if isInteractive(ctx) {
		return nil, fmt.Errorf("refusing to read from stdin: it is an interactive terminal, pipe the input instead")
	}
	return os.Stdin, nil
}

// readJobFile reads a job file, "-" meaning stdin. The returned name is used
// in messages.
func readJobFile(ctx context.Context, filename string) ([]byte, string, error) {
	if filename == "-" {
		stdin, err := stdinReader(ctx)
		if err != nil {
			return nil, "", err
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read job from stdin: %w", err)
		}
		return data, "<stdin>", nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}
