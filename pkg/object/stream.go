package object

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/renhive/renterd-go/pkg/api"
)

// Stream reads a remote object through ranged GET requests while presenting
// ordinary io.Reader/io.Seeker semantics. The logical position advances on
// Read and moves freely on Seek; underlying HTTP requests are issued lazily,
// only when a read cannot be satisfied from the currently buffered window.
// At most one body is open per stream at any time.
//
// A Stream is for a single consumer; it does no internal locking.
type Stream struct {
	ctx  context.Context
	exec api.Executor
	get  *api.Request
	path string

	pos  int64
	size int64 // -1 until a response reveals the total length
	w    window
	body io.ReadCloser

	// pendingErr is raised once the window drains after a body ended before
	// the declared length. It is cleared by the next successful fetch.
	pendingErr error

	closed bool
}

var _ io.ReadSeekCloser = (*Stream)(nil) // Type check: implements interface

// StreamOption adjusts a stream at open time.
type StreamOption func(*Stream)

// WithHighWater caps the number of un-consumed bytes the stream will buffer
// before it stops pulling from the connection.
func WithHighWater(n int) StreamOption {
	return func(s *Stream) {
		s.w = newWindow(n)
	}
}

func newStream(ctx context.Context, exec api.Executor, get *api.Request, path string, size int64, opts ...StreamOption) *Stream {
	s := &Stream{
		ctx:  ctx,
		exec: exec,
		get:  get,
		path: path,
		size: size,
		w:    newWindow(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Length returns the object's total length, if any response has revealed it.
func (s *Stream) Length() (int64, bool) {
	if s.size < 0 {
		return 0, false
	}
	return s.size, true
}

// Read fills p with the object's bytes at the current position, fetching
// under the context the stream was opened with. See ReadContext.
func (s *Stream) Read(p []byte) (int, error) {
	return s.ReadContext(s.ctx, p)
}

// ReadContext fills p with the object's bytes at the current position. It
// returns fewer bytes than requested only at the end of the buffered window
// or the end of the object; after the last byte it returns 0, io.EOF. A
// failed or cancelled read leaves the position unchanged, so a later call
// can retry the same bytes under a fresh context.
func (s *Stream) ReadContext(ctx context.Context, p []byte) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	for {
		switch negotiate(s.pos, &s.w, s.body != nil, s.size) {
		case actEOF:
			return 0, io.EOF

		case actServe:
			n := s.w.take(p)
			s.pos += int64(n)
			return n, nil

		case actContinue:
			n, err := s.w.fill(s.body)
			if err == io.EOF {
				s.closeBody()
				if s.size < 0 {
					// open-ended range; the body ending defines the length
					s.size = s.w.end()
				} else if s.w.end() < s.size {
					s.pendingErr = &api.Protocol{Reason: fmt.Sprintf(
						"body for %q ended at %d before declared length %d", s.path, s.w.end(), s.size)}
				}
			} else if err != nil {
				s.closeBody()
				if n == 0 && s.w.len() == 0 {
					return 0, &api.Transport{Err: err}
				}
				// some bytes arrived before the failure; serve them and let
				// the next read reopen the range
			}

		case actFetch:
			if s.pendingErr != nil {
				err := s.pendingErr
				s.pendingErr = nil
				return 0, err
			}
			if err := s.fetch(ctx, s.pos); err != nil {
				return 0, err
			}
		}
	}
}

// Seek moves the logical position. It never fetches: any number of seeks in a
// row costs zero requests, except that io.SeekEnd with an unknown length
// issues a single HEAD probe to resolve it. Buffered bytes between the old
// and new position are reused; everything else is discarded and refetched on
// the next Read. Positions past the known end clamp to the end.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, os.ErrClosed
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		if s.size < 0 {
			if err := s.probeLength(); err != nil {
				return s.pos, err
			}
		}
		target = s.size + offset
	default:
		return s.pos, fmt.Errorf("invalid whence %d", whence)
	}

	if target < 0 {
		return s.pos, fmt.Errorf("seek to negative position %d", target)
	}
	if s.size >= 0 && target > s.size {
		target = s.size
	}

	if target >= s.w.start && (target < s.w.end() || (target == s.w.end() && s.body != nil)) {
		// forward seek within the buffered window (or to the exact tail of a
		// live body): drain in place, keep the connection
		s.w.skip(target - s.w.start)
	} else {
		s.closeBody()
		s.w.discardTo(target)
		// any pending error belonged to the range just abandoned
		s.pendingErr = nil
	}

	s.pos = target
	return target, nil
}

// Close releases the open body, if any. The stream is unusable afterwards.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.closeBody()
	s.w.discardTo(0)
	return nil
}

func (s *Stream) closeBody() {
	if s.body != nil {
		_ = s.body.Close()
		s.body = nil
	}
}

// fetch opens a new ranged request starting at off, superseding any previous
// body. On failure nothing about the caller-visible state changes except that
// the stale window is gone; the position is untouched.
func (s *Stream) fetch(ctx context.Context, off int64) error {
	s.closeBody()
	s.w.discardTo(off)

	req := s.get.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-", off))

	resp, err := s.exec.Do(ctx, req)
	if err != nil {
		return &api.Transport{Err: err}
	}

	switch resp.Status {
	case http.StatusPartialContent:
		first, _, total, err := parseContentRange(resp.Header.Get("Content-Range"))
		if err != nil {
			_ = resp.Body.Close()
			return &api.Protocol{Reason: err.Error()}
		}
		if first != off {
			_ = resp.Body.Close()
			return &api.Protocol{Reason: fmt.Sprintf("requested range at %d, daemon sent %d", off, first)}
		}
		if total >= 0 {
			if s.size >= 0 && total != s.size {
				_ = resp.Body.Close()
				return &api.Protocol{Reason: fmt.Sprintf("daemon reports length %d, previously %d", total, s.size)}
			}
			s.size = total
		}
		s.body = resp.Body
		s.pendingErr = nil
		return nil

	case http.StatusOK:
		// the daemon ignored the Range header. At offset zero the full body
		// is exactly what was asked for; anywhere else we refuse rather than
		// silently download and discard the prefix.
		if off != 0 {
			_ = resp.Body.Close()
			return &api.NotSeekable{Path: s.path}
		}
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
				if s.size >= 0 && n != s.size {
					_ = resp.Body.Close()
					return &api.Protocol{Reason: fmt.Sprintf("daemon reports length %d, previously %d", n, s.size)}
				}
				s.size = n
			}
		}
		s.body = resp.Body
		s.pendingErr = nil
		return nil

	case http.StatusRequestedRangeNotSatisfiable:
		_ = resp.Body.Close()
		if total, err := parseUnsatisfiedRange(resp.Header.Get("Content-Range")); err == nil {
			if s.size < 0 {
				s.size = total
			}
			if off == total {
				// requesting the byte just past the end is end-of-object,
				// not a failure
				return nil
			}
			return &api.RangeNotSatisfiable{Offset: off, Length: total}
		}
		if s.size >= 0 && off == s.size {
			return nil
		}
		return &api.RangeNotSatisfiable{Offset: off, Length: s.size}

	case http.StatusNotFound:
		_ = resp.Body.Close()
		return &api.NotFound{Path: s.path}

	case http.StatusUnauthorized:
		_ = resp.Body.Close()
		return &api.Unauthorized{}

	default:
		text := readErrText(resp.Body)
		return &api.StatusError{Status: resp.Status, Text: text}
	}
}

// probeLength issues a HEAD request to resolve the object's total length
// without transferring any data.
func (s *Stream) probeLength() error {
	req := s.get.Clone()
	req.Method = http.MethodHead

	resp, err := s.exec.Do(s.ctx, req)
	if err != nil {
		return &api.Transport{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.Status {
	case http.StatusOK, http.StatusNoContent:
	case http.StatusNotFound:
		return &api.NotFound{Path: s.path}
	case http.StatusUnauthorized:
		return &api.Unauthorized{}
	default:
		return &api.StatusError{Status: resp.Status, Text: readErrText(resp.Body)}
	}

	cl := resp.Header.Get("Content-Length")
	if cl == "" {
		return &api.UnknownLength{Path: s.path}
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || n < 0 {
		return &api.Protocol{Reason: fmt.Sprintf("invalid Content-Length %q", cl)}
	}
	s.size = n
	return nil
}

// parseContentRange parses "bytes first-last/total". A total of "*" yields
// -1.
func parseContentRange(v string) (first, last, total int64, err error) {
	raw, ok := strings.CutPrefix(v, "bytes ")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	span, totalStr, ok := strings.Cut(raw, "/")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	firstStr, lastStr, ok := strings.Cut(span, "-")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	if first, err = strconv.ParseInt(firstStr, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	if last, err = strconv.ParseInt(lastStr, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	if totalStr == "*" {
		return first, last, -1, nil
	}
	if total, err = strconv.ParseInt(totalStr, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	return first, last, total, nil
}

// parseUnsatisfiedRange parses the "bytes */total" form sent with 416.
func parseUnsatisfiedRange(v string) (int64, error) {
	totalStr, ok := strings.CutPrefix(v, "bytes */")
	if !ok {
		return 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil || total < 0 {
		return 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	return total, nil
}

// readErrText drains up to a few KB of an error response body for the error
// message, then closes it.
func readErrText(rc io.ReadCloser) string {
	defer func() { _ = rc.Close() }()
	b, _ := io.ReadAll(io.LimitReader(rc, 4096))
	return strings.TrimSpace(string(b))
}
