package engine

import "archive/tar"

// Report lists the entries of a decoded archive.
type Report struct {
	Source      string        `json:"source" yaml:"source"`
	Compression string        `json:"compression" yaml:"compression"`
	Entries     []EntryDigest `json:"entries" yaml:"entries"`
	TotalSize   int64         `json:"total_size" yaml:"total_size"`
}

// EntryDigest describes one archive entry and the digest of its content.
type EntryDigest struct {
	Index    int    `json:"index" yaml:"index"`
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Size     int64  `json:"size" yaml:"size"`
	SHA3_384 string `json:"sha3_384" yaml:"sha3_384"`
}

// EntryTypeName maps a tar type flag to a readable name.
func EntryTypeName(typeflag byte) string {
	switch typeflag {
	case tar.TypeReg:
		return "file"
	case tar.TypeLink:
		return "hardlink"
	case tar.TypeSymlink:
		return "symlink"
	case tar.TypeChar:
		return "char"
	case tar.TypeBlock:
		return "block"
	case tar.TypeDir:
		return "dir"
	case tar.TypeFifo:
		return "fifo"
	default:
		return "other"
	}
}
