package untar

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/infracollect/untarxz/internal/engine/archivers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Entries(t *testing.T) {
	files := []testFile{
		{name: "dir/", dir: true},
		{name: "dir/a.txt", content: []byte("alpha")},
		{name: "dir/b.txt", content: []byte("bravo")},
	}

	r, err := NewReader(bytes.NewReader(buildArchive(t, "xz", files...)))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "xz", r.Compression())

	entry, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, Entry{Index: 0, Name: "dir/", Size: 0, Type: tar.TypeDir}, entry)
	assert.False(t, entry.IsRegular())

	entry, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, Entry{Index: 1, Name: "dir/a.txt", Size: 5, Type: tar.TypeReg}, entry)
	assert.True(t, entry.IsRegular())
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(content))

	// b.txt is not read before moving on.
	entry, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "dir/b.txt", entry.Name)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err, "EOF is sticky")
}

func TestReader_RegularFilesOnlyKeepsIndex(t *testing.T) {
	data := buildArchive(t, "lzma",
		testFile{name: "dir/", dir: true},
		testFile{name: "dir/link", symlink: "x"},
		testFile{name: "dir/file", content: []byte("f")},
	)

	r, err := NewReader(bytes.NewReader(data), WithRegularFilesOnly())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "lzma", r.Compression())

	entry, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Index)
	assert.Equal(t, "dir/file", entry.Name)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_ErrorClassification(t *testing.T) {
	valid := buildArchive(t, "xz", sampleFiles()...)

	plain := buildArchive(t, "none", testFile{name: "big", content: bytes.Repeat([]byte("y"), 4000)})
	truncatedTar, err := archivers.Compress("zstd", plain[:512+100])
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   []byte
		opts    []Option
		wantErr error
	}{
		{name: "truncated compressed stream", input: valid[:len(valid)/2], wantErr: ErrDecompression},
		{name: "truncated tar content", input: truncatedTar, wantErr: ErrFileRead},
		{name: "size limit while streaming", input: valid, opts: []Option{WithMaxDecompressedSize(700)}, wantErr: ErrLimitExceeded},
		{name: "entry limit while streaming", input: valid, opts: []Option{WithMaxEntries(1)}, wantErr: ErrLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.input), tt.opts...)
			require.NoError(t, err)
			defer r.Close()

			err = drain(r)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			// Failures are sticky.
			_, nextErr := r.Next()
			assert.Equal(t, err, nextErr)
		})
	}
}

func TestReader_ChecksCompressedTrailer(t *testing.T) {
	flipLast := func(data []byte, back int) []byte {
		out := append([]byte{}, data...)
		out[len(out)-back] ^= 0xFF
		return out
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "xz footer", input: flipLast(buildArchive(t, "xz", sampleFiles()...), 1)},
		{name: "gzip crc", input: flipLast(buildArchive(t, "gzip", sampleFiles()...), 8)},
		{name: "lzma trailing bytes", input: append(buildArchive(t, "lzma", sampleFiles()...), 0x00, 0x01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.input))
			require.NoError(t, err)
			defer r.Close()

			err = drain(r)
			assert.ErrorIs(t, err, ErrDecompression)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, -1, decodeErr.Entry)
		})

		t.Run(tt.name+" via walk", func(t *testing.T) {
			err := Walk(t.Context(), bytes.NewReader(tt.input), func(_ Entry, content io.Reader) error {
				_, err := io.Copy(io.Discard, content)
				return err
			})
			assert.ErrorIs(t, err, ErrDecompression)
		})
	}
}

func TestNewReader_OpenFailure(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF}))
	assert.ErrorIs(t, err, ErrDecompression)

	_, err = NewReader(bytes.NewReader(nil), WithCompression("bzip2"))
	assert.ErrorContains(t, err, "unsupported compression type")
}

func drain(r *Reader) error {
	for {
		if _, err := r.Next(); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if _, err := io.Copy(io.Discard, r); err != nil {
			return err
		}
	}
}

func TestWalk(t *testing.T) {
	files := sampleFiles()
	data := buildArchive(t, "gzip", files...)

	var names []string
	var got [][]byte
	err := Walk(t.Context(), bytes.NewReader(data), func(entry Entry, content io.Reader) error {
		names = append(names, entry.Name)
		b, err := io.ReadAll(content)
		if err != nil {
			return err
		}
		got = append(got, b)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.bin", "nested/c.txt", "empty"}, names)
	assert.Equal(t, contents(files), got)
}

func TestWalk_CallbackErrorIsReturnedAsIs(t *testing.T) {
	errStop := errors.New("stop here")
	calls := 0

	err := Walk(t.Context(), bytes.NewReader(buildArchive(t, "xz", sampleFiles()...)), func(Entry, io.Reader) error {
		calls++
		if calls == 2 {
			return errStop
		}
		return nil
	})
	assert.Same(t, errStop, err)
	assert.Equal(t, 2, calls)
}

func TestWalk_ReadFailureSurfacesThroughCallback(t *testing.T) {
	plain := buildArchive(t, "none", testFile{name: "big", content: bytes.Repeat([]byte("z"), 3000)})
	truncated, err := archivers.Compress("xz", plain[:512+10])
	require.NoError(t, err)

	err = Walk(t.Context(), bytes.NewReader(truncated), func(_ Entry, content io.Reader) error {
		_, err := io.ReadAll(content)
		return err
	})
	assert.ErrorIs(t, err, ErrFileRead)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 0, decodeErr.Entry)
}

func TestWalk_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	calls := 0

	err := Walk(ctx, bytes.NewReader(buildArchive(t, "xz", sampleFiles()...)), func(Entry, io.Reader) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWalk_OpenFailure(t *testing.T) {
	err := Walk(t.Context(), bytes.NewReader([]byte("\xff not an archive")), func(Entry, io.Reader) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrDecompression)
}
