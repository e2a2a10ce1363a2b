package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logFormats = []string{"console", "json"}

type logOptions struct {
	debug  bool
	level  string
	format string
}

type loggerCtxKeyType struct{}

var loggerCtxKey = loggerCtxKeyType{}

// newLogger builds the logger for the root flags. Logs go to w, never to
// stdout, where reports are written.
func newLogger(w io.Writer, opts logOptions) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(opts.level)
	if err != nil {
		return nil, zap.NewAtomicLevel(), fmt.Errorf("invalid log level %s: %w", opts.level, err)
	}
	if opts.debug {
		level.SetLevel(zap.DebugLevel)
	}

	format := opts.format
	if format == "" {
		format = "json"
		if opts.debug {
			format = "console"
		}
	}

	var encoder zapcore.Encoder
	switch format {
	case "json":
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	case "console":
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, zap.NewAtomicLevel(), fmt.Errorf("unsupported log format %q (available: %v)", format, logFormats)
	}

	out := zapcore.Lock(zapcore.AddSync(w))
	options := []zap.Option{zap.ErrorOutput(out)}
	if opts.debug {
		options = append(options, zap.AddCaller())
	}

	return zap.New(zapcore.NewCore(encoder, out, level), options...).Named("untarxz"), level, nil
}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// loggerFrom returns the logger stored by withLogger, or a no-op logger.
func loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerCtxKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}
