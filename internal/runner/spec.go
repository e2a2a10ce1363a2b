package runner

import (
	"fmt"
	"io"
	"time"

	v1 "github.com/infracollect/untarxz/apis/v1"
	"github.com/infracollect/untarxz/internal/engine/sources"
	"github.com/infracollect/untarxz/pkg/untar"
	"github.com/samber/lo"
)

// ResolveSourceSpec maps the source section of a job to a registered source
// kind and its config. Exactly one source must be set. The stdin config is
// returned without a reader; see bindStdin.
func ResolveSourceSpec(s v1.SourceSpec) (sources.ResolvedSource, error) {
	set := lo.Count([]bool{s.Filesystem != nil, s.HTTP != nil, s.S3 != nil, s.Stdin != nil}, true)
	if set != 1 {
		return sources.ResolvedSource{}, fmt.Errorf("source must set exactly one of filesystem, http, s3, stdin (got %d)", set)
	}

	switch {
	case s.Filesystem != nil:
		return sources.ResolvedSource{
			Kind:   sources.FilesystemKind,
			Config: sources.FilesystemConfig{Path: s.Filesystem.Path},
		}, nil
	case s.HTTP != nil:
		cfg := sources.HTTPConfig{
			URL:      s.HTTP.URL,
			Headers:  s.HTTP.Headers,
			Insecure: s.HTTP.Insecure,
		}
		if s.HTTP.Timeout != nil {
			cfg.Timeout = time.Duration(*s.HTTP.Timeout) * time.Second
		}
		return sources.ResolvedSource{Kind: sources.HTTPKind, Config: cfg}, nil
	case s.S3 != nil:
		cfg := sources.S3Config{
			Bucket:         s.S3.Bucket,
			Key:            s.S3.Key,
			Region:         lo.FromPtr(s.S3.Region),
			Endpoint:       lo.FromPtr(s.S3.Endpoint),
			ForcePathStyle: s.S3.ForcePathStyle,
		}
		if s.S3.Credentials != nil {
			cfg.AccessKeyID = s.S3.Credentials.AccessKeyID
			cfg.SecretAccessKey = s.S3.Credentials.SecretAccessKey
		}
		return sources.ResolvedSource{Kind: sources.S3Kind, Config: cfg}, nil
	default:
		return sources.ResolvedSource{Kind: sources.StreamKind, Config: sources.StreamConfig{}}, nil
	}
}

// bindStdin fills the reader of a stdin source.
func bindStdin(resolved sources.ResolvedSource, stdin io.Reader) sources.ResolvedSource {
	if resolved.Kind == sources.StreamKind {
		resolved.Config = sources.StreamConfig{Reader: stdin}
	}
	return resolved
}

// DecodeOptions converts the decode section of a job to untar options.
func DecodeOptions(spec *v1.DecodeSpec) []untar.Option {
	if spec == nil {
		return nil
	}

	var opts []untar.Option
	if spec.Compression != "" {
		opts = append(opts, untar.WithCompression(spec.Compression))
	}
	if spec.RegularFilesOnly {
		opts = append(opts, untar.WithRegularFilesOnly())
	}
	if spec.MaxDecompressedSize > 0 {
		opts = append(opts, untar.WithMaxDecompressedSize(spec.MaxDecompressedSize))
	}
	if spec.MaxEntries > 0 {
		opts = append(opts, untar.WithMaxEntries(spec.MaxEntries))
	}
	return opts
}

func checkDestination(output *v1.OutputSpec) error {
	if output == nil || output.Destination == nil {
		return nil
	}

	d := output.Destination
	if set := lo.Count([]bool{d.Stdout != nil, d.Folder != nil, d.S3 != nil}, true); set > 1 {
		return fmt.Errorf("destination must set at most one of stdout, folder, s3 (got %d)", set)
	}

	return nil
}
