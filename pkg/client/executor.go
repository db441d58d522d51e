package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/renhive/renterd-go/pkg/api"
	"github.com/renhive/renterd-go/pkg/stats"
)

// Executor is the HTTP implementation of api.Executor: it joins paths onto
// the daemon's base URL, attaches the fixed basic-auth credential, and
// returns whatever the daemon answered. Status interpretation is left to
// callers.
type Executor struct {
	base     *url.URL
	password string
	hc       *http.Client
	limiter  api.Limiter
	rec      *stats.Recorder
}

var _ api.Executor = (*Executor)(nil) // Type check: implements interface

type Option func(*Executor)

// WithHTTPClient swaps the underlying http.Client, e.g. to set timeouts or a
// custom transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Executor) {
		e.hc = hc
	}
}

// WithLimiter installs a throttling hook consulted before every request.
func WithLimiter(l api.Limiter) Option {
	return func(e *Executor) {
		e.limiter = l
	}
}

// WithRecorder makes the executor feed per-route request statistics into rec.
func WithRecorder(rec *stats.Recorder) Option {
	return func(e *Executor) {
		e.rec = rec
	}
}

func NewExecutor(baseURL, password string, opts ...Option) (*Executor, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("api endpoint url is required")
	}
	if password == "" {
		return nil, fmt.Errorf("api password is required")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api endpoint %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api endpoint %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid api endpoint %q: missing host", baseURL)
	}

	e := &Executor{
		base:     u,
		password: password,
		hc:       http.DefaultClient,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Executor) Do(ctx context.Context, req *api.Request) (*api.Response, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u := *e.base
	u.Path = path.Join(u.Path, "/", req.Path)
	if strings.HasSuffix(req.Path, "/") {
		// directory listings are addressed by trailing slash, which
		// path.Join strips
		u.Path += "/"
	}
	if req.Query != nil {
		u.RawQuery = req.Query.Encode()
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, u.String(), req.Body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		hr.Header[k] = vs
	}
	hr.SetBasicAuth("api", e.password)

	var done func(bool)
	route := routeKey(req)
	if e.rec != nil {
		done = e.rec.Observe(route)
	}

	resp, err := e.hc.Do(hr)
	if err != nil {
		if done != nil {
			done(true)
		}
		return nil, err
	}
	if done != nil {
		done(resp.StatusCode >= 400)
	}

	// net/http strips Content-Length out of the header map for HEAD
	// responses; put it back so callers see one consistent surface.
	if resp.ContentLength >= 0 && resp.Header.Get("Content-Length") == "" {
		resp.Header.Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}

	body := resp.Body
	if e.rec != nil {
		body = &countingBody{rc: body, rec: e.rec, route: route}
	}

	return &api.Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}

// routeKey groups requests by method and the first two path segments, so
// every object fetch lands in one bucket regardless of key.
func routeKey(req *api.Request) string {
	segs := strings.Split(strings.Trim(req.Path, "/"), "/")
	if len(segs) > 2 {
		segs = segs[:2]
	}
	return req.Method + " /" + strings.Join(segs, "/")
}

type countingBody struct {
	rc    io.ReadCloser
	rec   *stats.Recorder
	route string
}

func (c *countingBody) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	if n > 0 {
		c.rec.AddBytes(c.route, int64(n))
	}
	return n, err
}

func (c *countingBody) Close() error {
	return c.rc.Close()
}
