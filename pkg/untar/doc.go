// Package untar decodes compressed tar archives into the contents of their
// entries.
//
// Decode decompresses the whole input first and then reads every entry into
// its own buffer. Reader and Walk stream the same pipeline entry by entry.
// Inputs are XZ or LZMA-alone by default; zstd, gzip, lz4 and plain tar are
// recognized as well.
package untar
