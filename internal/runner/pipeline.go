package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	v1 "github.com/infracollect/untarxz/apis/v1"
	"github.com/infracollect/untarxz/internal/engine"
	"github.com/infracollect/untarxz/internal/engine/archivers"
	"github.com/infracollect/untarxz/internal/engine/encoders"
	"github.com/infracollect/untarxz/internal/engine/sinks"
	"github.com/infracollect/untarxz/internal/engine/sources"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// BuildRegistry creates a registry with every source kind registered.
func BuildRegistry(logger *zap.Logger) *engine.Registry {
	registry := engine.NewRegistry(logger)
	sources.Register(registry)
	return registry
}

func createPipeline(ctx context.Context, logger *zap.Logger, job v1.DecodeJob, stdin io.Reader) (*engine.Pipeline, error) {
	resolved, err := ResolveSourceSpec(job.Spec.Source)
	if err != nil {
		return nil, err
	}

	source, err := BuildRegistry(logger.Named("sources")).CreateSource(ctx, resolved.Kind, bindStdin(resolved, stdin).Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s source: %w", resolved.Kind, err)
	}

	logger.Info("created source", zap.String("source", source.Name()))

	return engine.NewPipeline(logger, source, DecodeOptions(job.Spec.Decode)...), nil
}

// buildEncoder creates an encoder from the output spec.
// Defaults to compact JSON if no encoding is specified.
func buildEncoder(output *v1.OutputSpec) (engine.Encoder, error) {
	if output == nil || output.Encoding == nil {
		return encoders.NewJSONEncoder(""), nil
	}

	switch {
	case output.Encoding.JSON != nil:
		return encoders.NewJSONEncoder(output.Encoding.JSON.Indent), nil
	case output.Encoding.YAML != nil:
		return encoders.NewYAMLEncoder(), nil
	default:
		return encoders.NewJSONEncoder(""), nil
	}
}

// buildSink creates a sink from the job spec.
//
// Default behavior:
//   - No output or destination: stdout sink
//   - Explicit stdout: stdout sink
//   - Folder: filesystem sink rooted at the folder
//   - S3: s3 sink
//
// If archive is configured, the sink is wrapped with an ArchiveSink.
func buildSink(ctx context.Context, job v1.DecodeJob, stdout io.Writer) (engine.Sink, error) {
	sink, err := buildInnerSink(ctx, job, stdout)
	if err != nil {
		return nil, err
	}

	if job.Spec.Output != nil && job.Spec.Output.Archive != nil {
		return wrapWithArchiveSink(job, sink)
	}

	return sink, nil
}

func buildInnerSink(ctx context.Context, job v1.DecodeJob, stdout io.Writer) (engine.Sink, error) {
	output := job.Spec.Output
	if output == nil || output.Destination == nil || output.Destination.Stdout != nil {
		if output != nil && output.Archive != nil {
			return nil, fmt.Errorf("stdout destination cannot be used with archive configuration")
		}
		return sinks.NewStreamSink(stdout), nil
	}

	switch {
	case output.Destination.Folder != nil:
		return sinks.NewFilesystemSinkFromPath(output.Destination.Folder.Path)
	case output.Destination.S3 != nil:
		return buildS3Sink(ctx, output.Destination.S3)
	default:
		return sinks.NewStreamSink(stdout), nil
	}
}

func wrapWithArchiveSink(job v1.DecodeJob, inner engine.Sink) (engine.Sink, error) {
	archive := job.Spec.Output.Archive

	archiver, err := archivers.NewTarArchiver(archive.Compression)
	if err != nil {
		return nil, fmt.Errorf("failed to create tar archiver: %w", err)
	}

	name := archive.Name
	if name == "" {
		name = job.Metadata.Name
	}

	return sinks.NewArchiveSink(inner, archiver, name), nil
}

func buildS3Sink(ctx context.Context, spec *v1.S3SinkSpec) (engine.Sink, error) {
	cfg := sinks.S3Config{
		Bucket:         spec.Bucket,
		Prefix:         lo.FromPtr(spec.Prefix),
		Region:         lo.FromPtr(spec.Region),
		Endpoint:       lo.FromPtr(spec.Endpoint),
		ForcePathStyle: spec.ForcePathStyle,
	}

	if spec.Credentials != nil {
		cfg.AccessKeyID = spec.Credentials.AccessKeyID
		cfg.SecretAccessKey = spec.Credentials.SecretAccessKey
	}

	return sinks.NewS3Sink(ctx, cfg)
}

// BuildVariables creates the variables map for template expansion: the
// built-in job variables plus every allowed environment variable. An allowed
// variable that is not set is an error.
func BuildVariables(job v1.DecodeJob, allowedEnv []string) (map[string]string, error) {
	date := time.Now().UTC()
	variables := map[string]string{
		"JOB_NAME":         job.Metadata.Name,
		"JOB_DATE_ISO8601": date.Format(engine.ISO8601Basic),
		"JOB_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}
