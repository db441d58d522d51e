package object

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/renhive/renterd-go/pkg/api"
)

// Info is the object metadata learned from the download-initiation HEAD
// request. It never changes for the lifetime of a handle.
type Info struct {
	Path         string
	Bucket       string
	Size         int64 // -1 when the daemon did not declare a length
	ContentType  string
	ETag         string
	LastModified time.Time

	// Seekable reports whether the daemon advertises byte ranges for this
	// object. Only seekable objects can be opened as a Stream.
	Seekable bool
}

// Handle is a downloadable remote object. It owns the GET request shape used
// to fetch it; streams opened from it issue that request with Range headers
// as needed.
type Handle struct {
	Info

	exec api.Executor
	get  *api.Request
}

// NewHandle wraps the object described by info. get must be the ranged-GET
// request for the object, without a Range header; it is cloned per fetch.
func NewHandle(exec api.Executor, get *api.Request, info Info) *Handle {
	return &Handle{
		Info: info,
		exec: exec,
		get:  get.Clone(),
	}
}

// Length returns the object's declared total length, if known.
func (h *Handle) Length() (int64, bool) {
	if h.Size < 0 {
		return 0, false
	}
	return h.Size, true
}

// Open returns the object's bytes as a plain sequential reader, fetched with
// a single un-ranged GET.
func (h *Handle) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := h.exec.Do(ctx, h.get.Clone())
	if err != nil {
		return nil, &api.Transport{Err: err}
	}

	switch resp.Status {
	case http.StatusOK, http.StatusPartialContent:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, &api.NotFound{Path: h.Path}
	case http.StatusUnauthorized:
		_ = resp.Body.Close()
		return nil, &api.Unauthorized{}
	default:
		return nil, &api.StatusError{Status: resp.Status, Text: readErrText(resp.Body)}
	}
}

// OpenSeekable returns a random-access stream over the object, positioned at
// offset. No request is issued until the first read; Seekable objects only.
func (h *Handle) OpenSeekable(ctx context.Context, offset int64, opts ...StreamOption) (*Stream, error) {
	if !h.Seekable {
		return nil, &api.NotSeekable{Path: h.Path}
	}

	s := newStream(ctx, h.exec, h.get, h.Path, h.Size, opts...)
	if offset != 0 {
		if _, err := s.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return s, nil
}
