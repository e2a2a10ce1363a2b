package untar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Decode decompresses r and returns the content of every tar entry, in
// archive order. Only content is kept: directories and other non-file
// entries produce empty buffers unless WithRegularFilesOnly is set.
//
// The decompressed archive and all entries are held in memory. On failure no
// partial result is returned; the error is a *DecodeError unless the options
// themselves are invalid.
func Decode(r io.Reader, opts ...Option) ([][]byte, error) {
	return DecodeContext(context.Background(), r, opts...)
}

// DecodeContext is Decode with cancellation checked between entries.
func DecodeContext(ctx context.Context, r io.Reader, opts ...Option) ([][]byte, error) {
	cfg := newConfig(opts)

	payload, compression, err := decompress(cfg, r)
	if err != nil {
		return nil, err
	}

	tr := newReader(cfg, io.NopCloser(bytes.NewReader(payload)), compression, 0)

	files := make([][]byte, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled while decoding archive: %w", err)
		}

		if _, err := tr.Next(); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		files = append(files, content)
	}

	cfg.logger.Debug("decoded archive",
		zap.String("compression", compression),
		zap.Int("decompressed_size", len(payload)),
		zap.Int("entries", len(files)),
	)

	return files, nil
}

// decompress runs the decompression stage to completion.
func decompress(cfg config, r io.Reader) ([]byte, string, error) {
	rc, compression, err := openStream(cfg, r)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	payload, err := io.ReadAll(&stream{r: rc, max: cfg.maxDecompressedSize})
	if err != nil {
		kind := DecompressionFailure
		if errors.Is(err, errSizeLimit) {
			kind = LimitExceeded
		}
		cfg.logger.Debug("failed to decompress archive",
			zap.String("compression", string(compression)),
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
		return nil, "", &DecodeError{Kind: kind, Entry: -1}
	}

	return payload, string(compression), nil
}
