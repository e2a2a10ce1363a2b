package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/infracollect/untarxz/apis/v1"
	"github.com/infracollect/untarxz/internal/engine/sources"
)

func TestBuildVariables(t *testing.T) {
	job := v1.DecodeJob{
		Metadata: v1.Metadata{
			Name: "test-job",
		},
	}

	t.Run("built-in variables are set", func(t *testing.T) {
		variables, err := BuildVariables(job, nil)
		require.NoError(t, err)

		assert.Equal(t, "test-job", variables["JOB_NAME"])

		_, err = time.Parse("20060102T150405Z", variables["JOB_DATE_ISO8601"])
		require.NoError(t, err, "JOB_DATE_ISO8601 should be valid ISO8601 basic format")

		_, err = time.Parse(time.RFC3339, variables["JOB_DATE_RFC3339"])
		require.NoError(t, err, "JOB_DATE_RFC3339 should be valid RFC3339 format")

		assert.Len(t, variables, 3)
	})

	t.Run("allowed env variables are included", func(t *testing.T) {
		t.Setenv("VAR1", "value1")
		t.Setenv("VAR2", "value2")

		variables, err := BuildVariables(job, []string{"VAR1", "VAR2"})
		require.NoError(t, err)

		assert.Equal(t, "value1", variables["VAR1"])
		assert.Equal(t, "value2", variables["VAR2"])
	})

	t.Run("errors accumulate for missing env variables", func(t *testing.T) {
		_, err := BuildVariables(job, []string{"UNTARXZ_MISSING1", "UNTARXZ_MISSING2"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"UNTARXZ_MISSING1" is not set`)
		assert.Contains(t, err.Error(), `"UNTARXZ_MISSING2" is not set`)
	})
}

func TestExpandTemplates_DecodeJob(t *testing.T) {
	t.Run("expands source and destination fields", func(t *testing.T) {
		region := "${REGION}"
		job := v1.DecodeJob{
			Metadata: v1.Metadata{Name: "nightly"},
			Spec: v1.DecodeJobSpec{
				Source: v1.SourceSpec{
					S3: &v1.S3SourceSpec{
						Bucket: "${BUCKET}",
						Key:    "dumps/${JOB_NAME}.tar.xz",
						Region: &region,
						Credentials: &v1.S3Credentials{
							AccessKeyID:     "${AWS_KEY}",
							SecretAccessKey: "${AWS_SECRET}",
						},
					},
				},
				Output: &v1.OutputSpec{
					Destination: &v1.DestinationSpec{
						Folder: &v1.FolderSpec{Path: "reports/${JOB_NAME}"},
					},
				},
			},
		}

		variables := map[string]string{
			"JOB_NAME":   "nightly",
			"BUCKET":     "backups",
			"REGION":     "eu-west-1",
			"AWS_KEY":    "key",
			"AWS_SECRET": "secret",
		}

		require.NoError(t, ExpandTemplates(&job, variables))

		assert.Equal(t, "backups", job.Spec.Source.S3.Bucket)
		assert.Equal(t, "dumps/nightly.tar.xz", job.Spec.Source.S3.Key)
		assert.Equal(t, "eu-west-1", *job.Spec.Source.S3.Region)
		assert.Equal(t, "key", job.Spec.Source.S3.Credentials.AccessKeyID)
		assert.Equal(t, "secret", job.Spec.Source.S3.Credentials.SecretAccessKey)
		assert.Equal(t, "reports/nightly", job.Spec.Output.Destination.Folder.Path)
	})

	t.Run("http headers are expanded", func(t *testing.T) {
		job := v1.DecodeJob{
			Spec: v1.DecodeJobSpec{
				Source: v1.SourceSpec{
					HTTP: &v1.HTTPSourceSpec{
						URL:     "https://${HOST}/a.tar.xz",
						Headers: map[string]string{"Authorization": "Bearer ${TOKEN}"},
					},
				},
			},
		}

		require.NoError(t, ExpandTemplates(&job, map[string]string{"HOST": "example.com", "TOKEN": "t0k"}))
		assert.Equal(t, "https://example.com/a.tar.xz", job.Spec.Source.HTTP.URL)
		assert.Equal(t, "Bearer t0k", job.Spec.Source.HTTP.Headers["Authorization"])
	})

	t.Run("error on missing variable", func(t *testing.T) {
		job := v1.DecodeJob{
			Spec: v1.DecodeJobSpec{
				Source: v1.SourceSpec{
					Filesystem: &v1.FilesystemSourceSpec{Path: "${MISSING_DIR}/a.tar.xz"},
				},
			},
		}

		err := ExpandTemplates(&job, map[string]string{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MISSING_DIR")
	})
}

func TestResolveSourceSpec(t *testing.T) {
	timeout := 5
	region := "eu-west-1"

	tests := []struct {
		name    string
		spec    v1.SourceSpec
		want    sources.ResolvedSource
		wantErr string
	}{
		{
			name: "filesystem",
			spec: v1.SourceSpec{Filesystem: &v1.FilesystemSourceSpec{Path: "a.tar.xz"}},
			want: sources.ResolvedSource{Kind: sources.FilesystemKind, Config: sources.FilesystemConfig{Path: "a.tar.xz"}},
		},
		{
			name: "http",
			spec: v1.SourceSpec{HTTP: &v1.HTTPSourceSpec{URL: "https://example.com/a.tar.xz", Timeout: &timeout}},
			want: sources.ResolvedSource{Kind: sources.HTTPKind, Config: sources.HTTPConfig{
				URL:     "https://example.com/a.tar.xz",
				Timeout: 5 * time.Second,
			}},
		},
		{
			name: "s3",
			spec: v1.SourceSpec{S3: &v1.S3SourceSpec{Bucket: "b", Key: "k", Region: &region, ForcePathStyle: true}},
			want: sources.ResolvedSource{Kind: sources.S3Kind, Config: sources.S3Config{
				Bucket: "b", Key: "k", Region: "eu-west-1", ForcePathStyle: true,
			}},
		},
		{
			name: "stdin",
			spec: v1.SourceSpec{Stdin: &v1.StdinSourceSpec{}},
			want: sources.ResolvedSource{Kind: sources.StreamKind, Config: sources.StreamConfig{}},
		},
		{
			name:    "none",
			spec:    v1.SourceSpec{},
			wantErr: "exactly one of filesystem, http, s3, stdin (got 0)",
		},
		{
			name: "two",
			spec: v1.SourceSpec{
				Filesystem: &v1.FilesystemSourceSpec{Path: "a.tar.xz"},
				Stdin:      &v1.StdinSourceSpec{},
			},
			wantErr: "(got 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSourceSpec(tt.spec)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeOptions(t *testing.T) {
	assert.Nil(t, DecodeOptions(nil))
	assert.Empty(t, DecodeOptions(&v1.DecodeSpec{}))
	assert.Len(t, DecodeOptions(&v1.DecodeSpec{
		Compression:         "xz",
		RegularFilesOnly:    true,
		MaxDecompressedSize: 1024,
		MaxEntries:          10,
	}), 4)
}
