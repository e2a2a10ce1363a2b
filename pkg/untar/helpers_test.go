package untar

import (
	"bytes"
	"testing"

	"github.com/infracollect/untarxz/internal/engine/archivers"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	name    string
	content []byte
	dir     bool
	symlink string
}

// buildArchive packs files, in order, into a tar compressed with compression.
func buildArchive(t *testing.T, compression string, files ...testFile) []byte {
	t.Helper()

	archiver, err := archivers.NewTarArchiver(compression)
	require.NoError(t, err)

	for _, f := range files {
		switch {
		case f.dir:
			require.NoError(t, archiver.AddDir(t.Context(), f.name))
		case f.symlink != "":
			require.NoError(t, archiver.AddSymlink(t.Context(), f.name, f.symlink))
		default:
			require.NoError(t, archiver.AddFile(t.Context(), f.name, bytes.NewReader(f.content)))
		}
	}

	data, err := archiver.Close()
	require.NoError(t, err)
	return data
}

func sampleFiles() []testFile {
	return []testFile{
		{name: "a.txt", content: []byte("first file")},
		{name: "b.bin", content: bytes.Repeat([]byte{0x00, 0x01, 0xFE, 0xFF}, 1500)},
		{name: "nested/c.txt", content: []byte("third")},
		{name: "empty", content: []byte{}},
	}
}

func contents(files []testFile) [][]byte {
	out := make([][]byte, 0, len(files))
	for _, f := range files {
		if f.content == nil {
			out = append(out, []byte{})
			continue
		}
		out = append(out, f.content)
	}
	return out
}
