package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/infracollect/untarxz/internal/engine/archivers"
	"github.com/infracollect/untarxz/pkg/untar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildArchive(t *testing.T, compression string, files map[string]string, order []string) []byte {
	t.Helper()

	archiver, err := archivers.NewTarArchiver(compression)
	require.NoError(t, err)
	for _, name := range order {
		require.NoError(t, archiver.AddFile(t.Context(), name, bytes.NewBufferString(files[name])))
	}
	data, err := archiver.Close()
	require.NoError(t, err)
	return data
}

func TestPipeline_Run(t *testing.T) {
	files := map[string]string{
		"hello.txt": "Hello, World!\n",
		"empty.txt": "",
	}
	data := buildArchive(t, "xz", files, []string{"hello.txt", "empty.txt"})
	source := &mockSource{name: "memory(test)", kind: "memory", data: data}

	report, err := NewPipeline(zap.NewNop(), source).Run(t.Context())
	require.NoError(t, err)

	assert.True(t, source.closed, "source should be closed")
	assert.Equal(t, "memory(test)", report.Source)
	assert.Equal(t, "xz", report.Compression)
	assert.Equal(t, int64(14), report.TotalSize)
	assert.Equal(t, []EntryDigest{
		{
			Index:    0,
			Name:     "hello.txt",
			Type:     "file",
			Size:     14,
			SHA3_384: "ec2f93fc0db0d4a0f6ca6340e487491ec5f0ea1d1aac0b0d482e4198c9dd56fdc939e9ff55f66ec7ab26d19f61a39551",
		},
		{
			Index:    1,
			Name:     "empty.txt",
			Type:     "file",
			Size:     0,
			SHA3_384: "0c63a75b845e4f7d01107d852e4c2485c51a50aaaa94fc61995e71bbee983a2ac3713831264adb47fb6bd1e058d5f004",
		},
	}, report.Entries)
}

func TestPipeline_RunWithOptions(t *testing.T) {
	data := buildArchive(t, "zstd", map[string]string{"a": "1", "b": "2", "c": "3"}, []string{"a", "b", "c"})

	_, err := NewPipeline(zap.NewNop(), &mockSource{name: "m", data: data}, untar.WithMaxEntries(2)).Run(t.Context())
	assert.ErrorIs(t, err, untar.ErrLimitExceeded)
}

func TestPipeline_Errors(t *testing.T) {
	t.Run("open failure", func(t *testing.T) {
		source := &mockSource{name: "broken", openErr: errors.New("connection refused")}

		_, err := NewPipeline(zap.NewNop(), source).Run(t.Context())
		assert.ErrorContains(t, err, "failed to open source broken")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("decompression failure keeps kind", func(t *testing.T) {
		source := &mockSource{name: "garbage", data: bytes.Repeat([]byte{0xFF}, 16)}

		_, err := NewPipeline(zap.NewNop(), source).Run(t.Context())
		assert.ErrorIs(t, err, untar.ErrDecompression)
		assert.True(t, source.closed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := NewPipeline(zap.NewNop(), &mockSource{name: "m"}).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEntryTypeName(t *testing.T) {
	tests := map[byte]string{
		'0': "file",
		'1': "hardlink",
		'2': "symlink",
		'3': "char",
		'4': "block",
		'5': "dir",
		'6': "fifo",
		'7': "other",
	}
	for flag, want := range tests {
		assert.Equal(t, want, EntryTypeName(flag), "typeflag %q", flag)
	}
}
