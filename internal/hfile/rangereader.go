package hfile

import (
	"context"
	"io"

	"github.com/scrapbird/hview/internal/apperrors"
	"github.com/scrapbird/hview/internal/objectstore"
)

// rangeReaderAt adapts a single object-store key into an io.ReaderAt by
// issuing one Range GET per ReadAt call. The H-file backend library treats
// this exactly like a local file: it decides where to seek, we decide how
// those seeks become HTTP bytes.
type rangeReaderAt struct {
	ctx   context.Context
	store objectstore.Store
	key   string
	size  int64
}

func newRangeReaderAt(ctx context.Context, store objectstore.Store, key string, size int64) *rangeReaderAt {
	return &rangeReaderAt{ctx: ctx, store: store, key: key, size: size}
}

func (r *rangeReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, apperrors.InvalidSelection("hfile: negative read offset %d for %q", off, r.key)
	}
	if off >= r.size {
		return 0, io.EOF
	}
	end := off + int64(len(p)) - 1
	truncated := false
	if end >= r.size {
		end = r.size - 1
		truncated = true
	}
	if end < off {
		return 0, io.EOF
	}

	data, err := r.store.ReadRange(r.ctx, r.key, off, end)
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	if truncated {
		return n, io.EOF
	}
	return n, nil
}
