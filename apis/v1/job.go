package v1

const DecodeJobKind = "DecodeJob"

// DecodeJob describes an archive to inspect and where to write its report.
type DecodeJob struct {
	Kind     string        `yaml:"kind" json:"kind" validate:"required,eq=DecodeJob"`
	Metadata Metadata      `yaml:"metadata" json:"metadata" validate:"required"`
	Spec     DecodeJobSpec `yaml:"spec" json:"spec" validate:"required"`
}

type Metadata struct {
	// Name also names the report file, so it cannot contain path separators.
	Name string `yaml:"name" json:"name" validate:"required,excludesall=/\\"`
}

type DecodeJobSpec struct {
	Source SourceSpec  `yaml:"source" json:"source" validate:"required"`
	Decode *DecodeSpec `yaml:"decode,omitempty" json:"decode,omitempty"`
	Output *OutputSpec `yaml:"output,omitempty" json:"output,omitempty"`
}

// SourceSpec selects where the archive is read from (exactly one field must be set).
type SourceSpec struct {
	Filesystem *FilesystemSourceSpec `yaml:"filesystem,omitempty" json:"filesystem,omitempty" validate:"required_without_all=HTTP S3 Stdin,excluded_with=HTTP S3 Stdin"`
	HTTP       *HTTPSourceSpec       `yaml:"http,omitempty" json:"http,omitempty" validate:"required_without_all=Filesystem S3 Stdin,excluded_with=Filesystem S3 Stdin"`
	S3         *S3SourceSpec         `yaml:"s3,omitempty" json:"s3,omitempty" validate:"required_without_all=Filesystem HTTP Stdin,excluded_with=Filesystem HTTP Stdin"`
	Stdin      *StdinSourceSpec      `yaml:"stdin,omitempty" json:"stdin,omitempty" validate:"required_without_all=Filesystem HTTP S3,excluded_with=Filesystem HTTP S3"`
}

type FilesystemSourceSpec struct {
	Path string `yaml:"path" json:"path" validate:"required" template:""`
}

type HTTPSourceSpec struct {
	URL      string            `yaml:"url" json:"url" validate:"required" template:""`
	Headers  map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Timeout  *int              `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"omitempty,min=1"`
	Insecure bool              `yaml:"insecure,omitempty" json:"insecure,omitempty"`
}

type S3SourceSpec struct {
	Bucket         string         `yaml:"bucket" json:"bucket" validate:"required" template:""`
	Key            string         `yaml:"key" json:"key" validate:"required" template:""`
	Region         *string        `yaml:"region,omitempty" json:"region,omitempty" template:""`
	Endpoint       *string        `yaml:"endpoint,omitempty" json:"endpoint,omitempty" template:""`
	ForcePathStyle bool           `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
	Credentials    *S3Credentials `yaml:"credentials,omitempty" json:"credentials,omitempty"`
}

type S3Credentials struct {
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" validate:"required" template:""`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" validate:"required" template:""`
}

// StdinSourceSpec reads the archive from the process standard input (no options currently).
type StdinSourceSpec struct{}

// DecodeSpec tunes how the archive is decoded. Zero limits mean unlimited.
type DecodeSpec struct {
	Compression         string `yaml:"compression,omitempty" json:"compression,omitempty" validate:"omitempty,oneof=auto xz lzma zstd gzip lz4 none"`
	RegularFilesOnly    bool   `yaml:"regular_files_only,omitempty" json:"regular_files_only,omitempty"`
	MaxDecompressedSize int64  `yaml:"max_decompressed_size,omitempty" json:"max_decompressed_size,omitempty" validate:"min=0"`
	MaxEntries          int    `yaml:"max_entries,omitempty" json:"max_entries,omitempty" validate:"min=0"`
}

// OutputSpec configures how the report is written.
type OutputSpec struct {
	// Encoding configures the output format (default: compact json).
	Encoding *EncodingSpec `yaml:"encoding,omitempty" json:"encoding,omitempty"`

	// Destination configures where output is written (default: stdout).
	Destination *DestinationSpec `yaml:"destination,omitempty" json:"destination,omitempty"`

	// Archive bundles the report into a compressed tar archive before it
	// reaches the destination.
	Archive *ArchiveSpec `yaml:"archive,omitempty" json:"archive,omitempty"`
}

// EncodingSpec configures the encoder (at most one field may be set).
type EncodingSpec struct {
	JSON *JSONEncodingSpec `yaml:"json,omitempty" json:"json,omitempty" validate:"excluded_with=YAML"`
	YAML *YAMLEncodingSpec `yaml:"yaml,omitempty" json:"yaml,omitempty" validate:"excluded_with=JSON"`
}

type JSONEncodingSpec struct {
	// Indent specifies indentation. Empty = compact, "  " = 2 spaces, "\t" = tabs.
	Indent string `yaml:"indent,omitempty" json:"indent,omitempty"`
}

type YAMLEncodingSpec struct{}

// DestinationSpec configures the output destination (at most one field may be set).
type DestinationSpec struct {
	Stdout *StdoutSpec `yaml:"stdout,omitempty" json:"stdout,omitempty" validate:"excluded_with=Folder S3"`
	Folder *FolderSpec `yaml:"folder,omitempty" json:"folder,omitempty" validate:"excluded_with=Stdout S3"`
	S3     *S3SinkSpec `yaml:"s3,omitempty" json:"s3,omitempty" validate:"excluded_with=Stdout Folder"`
}

type StdoutSpec struct{}

// FolderSpec writes the report file into a directory.
type FolderSpec struct {
	Path string `yaml:"path" json:"path" validate:"required" template:""`
}

// S3SinkSpec uploads the report file to a bucket.
type S3SinkSpec struct {
	Bucket         string         `yaml:"bucket" json:"bucket" validate:"required" template:""`
	Prefix         *string        `yaml:"prefix,omitempty" json:"prefix,omitempty" template:""`
	Region         *string        `yaml:"region,omitempty" json:"region,omitempty" template:""`
	Endpoint       *string        `yaml:"endpoint,omitempty" json:"endpoint,omitempty" template:""`
	ForcePathStyle bool           `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
	Credentials    *S3Credentials `yaml:"credentials,omitempty" json:"credentials,omitempty"`
}

// ArchiveSpec wraps the destination in a tar archive.
type ArchiveSpec struct {
	// Compression defaults to xz.
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty" validate:"omitempty,oneof=xz lzma zstd gzip lz4 none"`

	// Name is the archive file name without extension (default: job name).
	Name string `yaml:"name,omitempty" json:"name,omitempty" validate:"omitempty,excludesall=/\\" template:""`
}
