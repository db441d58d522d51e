package object_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/renhive/renterd-go/pkg/api"
	"github.com/renhive/renterd-go/pkg/client"
	"github.com/renhive/renterd-go/pkg/object"
	"github.com/renhive/renterd-go/pkg/testutil"
)

func setup(t *testing.T, body []byte) (*testutil.Daemon, *object.Handle) {
	t.Helper()

	d := testutil.NewDaemon(t)
	d.SetObject("blob.bin", body)

	exec, err := client.NewExecutor(d.URL(), testutil.Password)
	require.NoError(t, err)

	get := &api.Request{
		Method: http.MethodGet,
		Path:   "worker/objects/blob.bin",
		Query:  url.Values{"bucket": {"default"}},
	}
	h := object.NewHandle(exec, get, object.Info{
		Path:     "blob.bin",
		Bucket:   "default",
		Size:     int64(len(body)),
		Seekable: true,
	})
	return d, h
}

func blob(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func TestHandleOpen(t *testing.T) {
	ctx := context.Background()
	body := blob(1000)
	_, h := setup(t, body)

	rc, err := h.Open(ctx)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, body, got)
}

func TestHandleOpenMissing(t *testing.T) {
	ctx := context.Background()
	d, _ := setup(t, blob(10))

	exec, err := client.NewExecutor(d.URL(), testutil.Password)
	require.NoError(t, err)

	h := object.NewHandle(exec, &api.Request{
		Method: http.MethodGet,
		Path:   "worker/objects/nope.bin",
	}, object.Info{Path: "nope.bin", Size: -1, Seekable: true})

	_, err = h.Open(ctx)
	require.True(t, errors.Is(err, &api.NotFound{}))

	s, err := h.OpenSeekable(ctx, 0)
	require.NoError(t, err)
	_, err = s.Read(make([]byte, 1))
	require.True(t, errors.Is(err, &api.NotFound{}))
}

func TestStreamReadSeekRead(t *testing.T) {
	ctx := context.Background()
	body := blob(1000)
	d, h := setup(t, body)

	s, err := h.OpenSeekable(ctx, 0, object.WithHighWater(64))
	require.NoError(t, err)
	defer s.Close()

	buf := make([]byte, 100)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, body[:100], buf)

	_, err = s.Seek(500, io.SeekStart)
	require.NoError(t, err)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, body[500:600], buf)

	var ranges []string
	for _, r := range d.Requests() {
		if r.Method == http.MethodGet {
			ranges = append(ranges, r.Range)
		}
	}
	require.Equal(t, []string{"bytes=0-", "bytes=500-"}, ranges)
}

func TestStreamSeeksCostNothing(t *testing.T) {
	ctx := context.Background()
	d, h := setup(t, blob(1000))

	s, err := h.OpenSeekable(ctx, 250)
	require.NoError(t, err)
	defer s.Close()

	for _, off := range []int64{900, 0, 500, 999, 42} {
		_, err := s.Seek(off, io.SeekStart)
		require.NoError(t, err)
	}
	require.Empty(t, d.Requests())

	buf := make([]byte, 8)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, 1, d.RangeGets())
	require.Equal(t, "bytes=42-", d.Requests()[0].Range)
}

func TestStreamFullScan(t *testing.T) {
	ctx := context.Background()
	body := blob(100_000)
	d, h := setup(t, body)

	s, err := h.OpenSeekable(ctx, 0)
	require.NoError(t, err)
	defer s.Close()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, body, got)
	require.Equal(t, 1, d.RangeGets())
}

func TestStreamEOFAtEnd(t *testing.T) {
	ctx := context.Background()
	d, h := setup(t, blob(1000))

	s, err := h.OpenSeekable(ctx, 0)
	require.NoError(t, err)
	defer s.Close()

	pos, err := s.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(1000), pos)

	n, err := s.Read(make([]byte, 1))
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
	require.Empty(t, d.Requests()) // known length, nothing to ask
}

func TestStreamSeekPastEndClamps(t *testing.T) {
	ctx := context.Background()
	_, h := setup(t, blob(1000))

	s, err := h.OpenSeekable(ctx, 0)
	require.NoError(t, err)
	defer s.Close()

	pos, err := s.Seek(9999, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(1000), pos)

	_, err = s.Read(make([]byte, 1))
	require.Equal(t, io.EOF, err)
}

func TestStreamUnknownLengthProbe(t *testing.T) {
	ctx := context.Background()
	body := blob(1000)
	d, h := setup(t, body)

	// pretend the initiation response did not carry a length
	h.Size = -1

	s, err := h.OpenSeekable(ctx, 0)
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Length()
	require.False(t, ok)

	pos, err := s.Seek(-100, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(900), pos)

	reqs := d.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, http.MethodHead, reqs[0].Method)

	buf := make([]byte, 100)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, body[900:], buf)
}

func TestStreamUnknownLengthNoProbeAnswer(t *testing.T) {
	ctx := context.Background()
	d, h := setup(t, blob(1000))
	d.HideLength = true
	h.Size = -1

	s, err := h.OpenSeekable(ctx, 0)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Seek(0, io.SeekEnd)
	require.True(t, errors.Is(err, &api.UnknownLength{}))

	// relative and absolute seeks still work without a length
	pos, err := s.Seek(10, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(10), pos)
}

func TestStreamNonSeekableDaemon(t *testing.T) {
	ctx := context.Background()
	body := blob(1000)
	d, h := setup(t, body)
	d.NoRanges = true

	s, err := h.OpenSeekable(ctx, 0, object.WithHighWater(64))
	require.NoError(t, err)
	defer s.Close()

	// sequential consumption from the start still works
	buf := make([]byte, 100)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, body[:100], buf)

	// a read that needs a mid-object range fails loudly
	_, err = s.Seek(700, io.SeekStart)
	require.NoError(t, err)
	_, err = s.Read(buf)
	require.True(t, errors.Is(err, &api.NotSeekable{}))
}

func TestStreamCancelledReadRecovers(t *testing.T) {
	body := blob(1000)
	d, h := setup(t, body)
	d.BodyDelay = 5 * time.Second

	s, err := h.OpenSeekable(context.Background(), 0)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	buf := make([]byte, 100)
	_, err = s.ReadContext(ctx, buf)
	require.Error(t, err)

	// the failed read did not move the position; with the stall gone the
	// same bytes arrive on retry
	pos, err := s.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(0), pos)

	d.BodyDelay = 0
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, body[:100], buf)
}

func TestOpenSeekableRefusesUnseekable(t *testing.T) {
	_, h := setup(t, blob(10))
	h.Seekable = false

	_, err := h.OpenSeekable(context.Background(), 0)
	require.True(t, errors.Is(err, &api.NotSeekable{}))
}

func TestStreamOpenAtOffset(t *testing.T) {
	ctx := context.Background()
	body := blob(1000)
	d, h := setup(t, body)

	s, err := h.OpenSeekable(ctx, 600)
	require.NoError(t, err)
	defer s.Close()

	require.Empty(t, d.Requests()) // opening is free too

	buf := make([]byte, 100)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	require.Equal(t, body[600:700], buf)
	require.Equal(t, "bytes=600-", d.Requests()[0].Range)
}
