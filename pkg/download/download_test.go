package download_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/renhive/renterd-go/pkg/client"
	"github.com/renhive/renterd-go/pkg/download"
	"github.com/renhive/renterd-go/pkg/testutil"
	"github.com/renhive/renterd-go/pkg/worker"
)

// memFile is an in-memory io.WriterAt for collecting fetched bytes.
type memFile struct {
	mu  sync.Mutex
	buf []byte
}

func (f *memFile) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if need := int(off) + len(p); need > len(f.buf) {
		f.buf = append(f.buf, make([]byte, need-len(f.buf))...)
	}
	copy(f.buf[off:], p)
	return len(p), nil
}

func setup(t *testing.T, body []byte) (*testutil.Daemon, *worker.Client) {
	t.Helper()
	d := testutil.NewDaemon(t)
	d.SetObject("big.bin", body)
	exec, err := client.NewExecutor(d.URL(), testutil.Password)
	require.NoError(t, err)
	return d, worker.New(exec)
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 31)
	}
	return b
}

func TestFetchParallel(t *testing.T) {
	ctx := context.Background()
	body := payload(1 << 20)
	d, c := setup(t, body)

	h, err := c.Stat(ctx, "big.bin", "")
	require.NoError(t, err)

	var f memFile
	n, err := download.Fetch(ctx, h, &f, download.Options{
		Parallelism: 3,
		ChunkSize:   256 << 10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(len(body)), n)
	require.Equal(t, body, f.buf)

	// one ranged GET per chunk
	require.Equal(t, 4, d.RangeGets())
}

func TestFetchSequentialFallback(t *testing.T) {
	ctx := context.Background()
	body := payload(100_000)
	d, c := setup(t, body)
	d.NoRanges = true

	h, err := c.Stat(ctx, "big.bin", "")
	require.NoError(t, err)
	h.Seekable = false

	var f memFile
	n, err := download.Fetch(ctx, h, &f, download.Options{})
	require.NoError(t, err)
	require.Equal(t, int64(len(body)), n)
	require.Equal(t, body, f.buf)
	require.Equal(t, 0, d.RangeGets())
}

func TestFetchEmpty(t *testing.T) {
	ctx := context.Background()
	_, c := setup(t, nil)

	h, err := c.Stat(ctx, "big.bin", "")
	require.NoError(t, err)

	var f memFile
	n, err := download.Fetch(ctx, h, &f, download.Options{})
	require.NoError(t, err)
	require.Zero(t, n)
}
