package untar

import (
	"context"
	"fmt"
	"io"
)

// WalkFunc is called once per entry. content yields the entry's bytes and is
// only valid until the function returns; it does not need to be drained.
// Read failures from content are *DecodeError values.
type WalkFunc func(entry Entry, content io.Reader) error

// Walk streams the archive in r, calling fn for each entry in order. An error
// returned by fn stops the walk and is returned as is.
func Walk(ctx context.Context, r io.Reader, fn WalkFunc, opts ...Option) (err error) {
	tr, err := NewReader(r, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tr.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close decompressor: %w", cerr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled while walking archive: %w", err)
		}

		entry, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := fn(entry, tr); err != nil {
			return err
		}
	}
}
