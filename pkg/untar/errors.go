package untar

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a decode failure.
type ErrorKind int

const (
	// DecompressionFailure means the compressed stream could not be decoded:
	// corrupt or unsupported header, checksum mismatch, truncation.
	DecompressionFailure ErrorKind = iota + 1
	// FileReadFailure means an entry's content could not be fully read.
	FileReadFailure
	// ArchiveFormatFailure means a tar header could not be parsed.
	ArchiveFormatFailure
	// LimitExceeded means a configured size or entry limit was reached.
	LimitExceeded
)

var (
	ErrDecompression = errors.New("untar: decompression failure")
	ErrFileRead      = errors.New("untar: file read failure")
	ErrArchiveFormat = errors.New("untar: archive format failure")
	ErrLimitExceeded = errors.New("untar: limit exceeded")
)

func (k ErrorKind) String() string {
	switch k {
	case DecompressionFailure:
		return "DecompressionFailure"
	case FileReadFailure:
		return "FileReadFailure"
	case ArchiveFormatFailure:
		return "ArchiveFormatFailure"
	case LimitExceeded:
		return "LimitExceeded"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case DecompressionFailure:
		return ErrDecompression
	case FileReadFailure:
		return ErrFileRead
	case ArchiveFormatFailure:
		return ErrArchiveFormat
	case LimitExceeded:
		return ErrLimitExceeded
	default:
		return nil
	}
}

// DecodeError is the error returned by every decode operation. It reports
// what failed and where, not the underlying decoder diagnostic; that one is
// logged at debug level.
//
// Use errors.Is with ErrDecompression, ErrFileRead, ErrArchiveFormat or
// ErrLimitExceeded to test the kind.
type DecodeError struct {
	Kind ErrorKind
	// Entry is the zero-based position of the entry being processed, or -1
	// when no entry had been reached.
	Entry int
}

func (e *DecodeError) Error() string {
	msg := "untar: unknown failure"
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Entry < 0 {
		return msg
	}
	return fmt.Sprintf("%s (entry %d)", msg, e.Entry)
}

func (e *DecodeError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}
