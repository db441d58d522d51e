// This package contains the transport contract and shared error types used by
// every endpoint group. The HTTP implementation lives in pkg/client. To avoid
// circular deps, this package should import nothing from pkg.
package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Request describes one call to the remote daemon: a method, a path relative
// to the API root (e.g. "worker/objects/foo"), optional query parameters and
// headers, and an optional body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is streamed to the daemon as-is. Callers which need a JSON body
	// should use the builder in pkg/client, which sets the content type.
	Body io.Reader
}

// Clone returns a deep copy of the request, minus the body. Bodies are
// single-use readers and cannot be replayed, so callers which re-range a
// request must attach a fresh one.
func (r *Request) Clone() *Request {
	c := &Request{
		Method: r.Method,
		Path:   r.Path,
	}
	if r.Query != nil {
		c.Query = url.Values{}
		for k, vs := range r.Query {
			c.Query[k] = append([]string(nil), vs...)
		}
	}
	if r.Header != nil {
		c.Header = r.Header.Clone()
	}
	return c
}

// Response is the raw result of an executed request. The executor performs no
// status interpretation; callers decide what each status means for them.
type Response struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
}

// Executor issues a single HTTP request against the daemon and returns the
// raw response. An error is returned only for transport failures (connection,
// timeout, cancelled context); any status code the daemon responds with is
// returned as a Response.
type Executor interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Limiter is an optional throttling hook consulted before each request. The
// executor blocks on Wait until the limiter admits the request or the context
// is cancelled.
type Limiter interface {
	Wait(ctx context.Context) error
}
