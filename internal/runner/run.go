package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	v1 "github.com/infracollect/untarxz/apis/v1"
	"github.com/infracollect/untarxz/internal/engine"
	"go.uber.org/zap"
)

type Runner struct {
	logger   *zap.Logger
	job      v1.DecodeJob
	pipeline *engine.Pipeline
	encoder  engine.Encoder
	sink     engine.Sink
}

type options struct {
	stdin  io.Reader
	stdout io.Writer
}

type Option func(*options)

// WithStdin sets the reader used by stdin sources (default: os.Stdin).
func WithStdin(r io.Reader) Option {
	return func(o *options) {
		o.stdin = r
	}
}

// WithStdout sets the writer used by stdout destinations (default: os.Stdout).
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// ParseDecodeJob parses a YAML or JSON job file and validates it. Validation
// failures are returned as validator.ValidationErrors when the struct tags
// catch them.
func ParseDecodeJob(data []byte) (v1.DecodeJob, error) {
	var job v1.DecodeJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.DecodeJob{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := defaultValidator.Struct(job); err != nil {
		return v1.DecodeJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	if _, err := ResolveSourceSpec(job.Spec.Source); err != nil {
		return v1.DecodeJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	if err := checkDestination(job.Spec.Output); err != nil {
		return v1.DecodeJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	return job, nil
}

// New builds the source, encoder and sink of a job. Templates must already be
// expanded.
func New(ctx context.Context, logger *zap.Logger, job v1.DecodeJob, opts ...Option) (*Runner, error) {
	o := options{stdin: os.Stdin, stdout: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	logger.Info("creating runner", zap.String("job_name", job.Metadata.Name))

	pipeline, err := createPipeline(ctx, logger.Named("pipeline"), job, o.stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	encoder, err := buildEncoder(job.Spec.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to build encoder: %w", err)
	}

	sink, err := buildSink(ctx, job, o.stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to build sink: %w", err)
	}

	return &Runner{
		logger:   logger,
		job:      job,
		pipeline: pipeline,
		encoder:  encoder,
		sink:     sink,
	}, nil
}

// Run decodes the archive and writes its report as "<job name>.<ext>".
func (r *Runner) Run(ctx context.Context) (engine.Report, error) {
	report, err := r.pipeline.Run(ctx)
	if err != nil {
		return engine.Report{}, fmt.Errorf("failed to run pipeline: %w", err)
	}

	if err := r.WriteReport(ctx, report); err != nil {
		return engine.Report{}, fmt.Errorf("failed to write report: %w", err)
	}

	return report, nil
}

// WriteReport encodes the report, writes it to the sink and closes the sink.
func (r *Runner) WriteReport(ctx context.Context, report engine.Report) error {
	reader, err := r.encoder.Encode(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	filename := fmt.Sprintf("%s.%s", r.job.Metadata.Name, r.encoder.FileExtension())
	if err := r.sink.Write(ctx, filename, reader); err != nil {
		return fmt.Errorf("failed to write report %s to %s: %w", filename, r.sink.Name(), err)
	}

	if err := r.sink.Close(ctx); err != nil {
		return fmt.Errorf("failed to close sink: %w", err)
	}

	r.logger.Info("report written",
		zap.String("file", filename),
		zap.String("sink", r.sink.Name()),
	)

	return nil
}
