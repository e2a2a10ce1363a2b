package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/infracollect/untarxz/internal/engine"
	"go.uber.org/zap"
)

// Register adds every source kind to the registry.
func Register(registry *engine.Registry) {
	registry.RegisterSource(FilesystemKind, engine.NewSourceFactory(FilesystemKind,
		func(_ context.Context, _ *zap.Logger, cfg FilesystemConfig) (engine.Source, error) {
			return NewFilesystemSourceFromConfig(cfg)
		},
	))
	registry.RegisterSource(HTTPKind, engine.NewSourceFactory(HTTPKind,
		func(_ context.Context, _ *zap.Logger, cfg HTTPConfig) (engine.Source, error) {
			return NewHTTPSource(cfg)
		},
	))
	registry.RegisterSource(S3Kind, engine.NewSourceFactory(S3Kind,
		func(ctx context.Context, _ *zap.Logger, cfg S3Config) (engine.Source, error) {
			return NewS3Source(ctx, cfg)
		},
	))
	registry.RegisterSource(StreamKind, engine.NewSourceFactory(StreamKind,
		func(_ context.Context, _ *zap.Logger, cfg StreamConfig) (engine.Source, error) {
			if cfg.Reader == nil {
				return nil, fmt.Errorf("reader is required")
			}
			return NewStreamSource(cfg.Reader), nil
		},
	))
}

// ResolvedSource holds a source kind and the config for that kind.
type ResolvedSource struct {
	Kind   string
	Config any
}

// ParseURI maps a command-line archive location to a source: "-" is stdin,
// http(s) URLs are fetched, s3://bucket/key reads from S3 with the default
// AWS configuration, anything else is a filesystem path. stdin is only used
// for the "-" case; its reader must be filled in by the caller.
func ParseURI(uri string) (ResolvedSource, error) {
	switch {
	case uri == "":
		return ResolvedSource{}, fmt.Errorf("no archive provided")
	case uri == "-":
		return ResolvedSource{Kind: StreamKind, Config: StreamConfig{}}, nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return ResolvedSource{Kind: HTTPKind, Config: HTTPConfig{URL: uri}}, nil
	case strings.HasPrefix(uri, "s3://"):
		u, err := url.Parse(uri)
		if err != nil {
			return ResolvedSource{}, fmt.Errorf("failed to parse s3 uri '%s': %w", uri, err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return ResolvedSource{}, fmt.Errorf("s3 uri must look like s3://bucket/key, got: %s", uri)
		}
		return ResolvedSource{Kind: S3Kind, Config: S3Config{Bucket: u.Host, Key: key}}, nil
	default:
		return ResolvedSource{Kind: FilesystemKind, Config: FilesystemConfig{Path: uri}}, nil
	}
}
