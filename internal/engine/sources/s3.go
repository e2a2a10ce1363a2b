package sources

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/infracollect/untarxz/internal/engine"
)

const S3Kind = "s3"

// S3Getter is an interface for fetching objects from S3.
// This allows for easy mocking in tests.
type S3Getter interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config contains configuration for the S3 source.
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// S3Source reads the archive from S3-compatible object storage.
type S3Source struct {
	bucket string
	key    string
	client S3Getter
}

// NewS3Source creates a new S3 source with the given configuration.
func NewS3Source(ctx context.Context, cfg S3Config) (engine.Source, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, fmt.Errorf("bucket and key are required")
	}

	var opts []func(*config.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)

	// Custom endpoint for S3-compatible services (R2, MinIO, etc.)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewS3SourceWithClient(cfg.Bucket, cfg.Key, s3.NewFromConfig(awsCfg, s3Opts...)), nil
}

// NewS3SourceWithClient creates a new S3 source with a custom client.
// This is useful for testing.
func NewS3SourceWithClient(bucket, key string, client S3Getter) engine.Source {
	return &S3Source{
		bucket: bucket,
		key:    key,
		client: client,
	}
}

func (s *S3Source) Name() string {
	return fmt.Sprintf("s3(%s/%s)", s.bucket, s.key)
}

func (s *S3Source) Kind() string {
	return S3Kind
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, s.key, err)
	}

	return out.Body, nil
}
