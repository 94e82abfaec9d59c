package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSizeChanged reports a file that grew past its declared size.
var ErrSizeChanged = errors.New("file size changed since discovery")

// Source reads file content. Implementations must not return more than
// limit bytes; a longer file is an error.
type Source interface {
	ReadFile(ctx context.Context, path string, limit int64) ([]byte, error)
}

// OSSource reads from the local filesystem.
type OSSource struct{}

// ReadFile reads path, failing when it holds more than limit bytes.
func (OSSource) ReadFile(ctx context.Context, path string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	if limit < 0 {
		limit = 0
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: declared %d bytes", ErrSizeChanged, limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
