// Package download copies remote objects to local storage. Seekable objects
// of known length are fetched as parallel ranged chunks; everything else
// falls back to one sequential pass.
package download

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/renhive/renterd-go/pkg/object"
)

const (
	defaultParallelism = 4
	defaultChunkSize   = 4 << 20
)

type Options struct {
	// Parallelism is the number of concurrent range fetches. Zero means 4.
	Parallelism int

	// ChunkSize is the span each fetch covers. Zero means 4 MiB.
	ChunkSize int64
}

// Fetch copies the whole object behind h into w and returns the byte count.
// Each chunk worker opens its own stream, so the handle is safe to fetch
// from concurrently.
func Fetch(ctx context.Context, h *object.Handle, w io.WriterAt, opts Options) (int64, error) {
	if opts.Parallelism <= 0 {
		opts.Parallelism = defaultParallelism
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}

	size, ok := h.Length()
	if !ok || !h.Seekable {
		return sequential(ctx, h, w)
	}
	if size == 0 {
		return 0, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	for off := int64(0); off < size; off += opts.ChunkSize {
		off := off
		n := min(opts.ChunkSize, size-off)
		g.Go(func() error {
			return fetchChunk(ctx, h, w, off, n)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return size, nil
}

func fetchChunk(ctx context.Context, h *object.Handle, w io.WriterAt, off, n int64) error {
	s, err := h.OpenSeekable(ctx, off)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	copied, err := io.CopyN(io.NewOffsetWriter(w, off), s, n)
	if err != nil {
		return fmt.Errorf("chunk at %d: %w", off, err)
	}
	if copied != n {
		return fmt.Errorf("chunk at %d: short copy %d of %d", off, copied, n)
	}
	return nil
}

func sequential(ctx context.Context, h *object.Handle, w io.WriterAt) (int64, error) {
	rc, err := h.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	n, err := io.Copy(io.NewOffsetWriter(w, 0), rc)
	if err != nil {
		return n, fmt.Errorf("sequential fetch: %w", err)
	}
	return n, nil
}
