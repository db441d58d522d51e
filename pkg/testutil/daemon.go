// In-process fake of the storage daemon's HTTP API, for tests. It serves
// objects under /worker/objects/ with real byte-range semantics and lets
// tests register canned responses for any other route. Every request is
// logged so tests can assert on exactly how many ranged fetches a stream
// issued.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

const Password = "test-password"

type LoggedRequest struct {
	Method string
	Path   string
	Range  string
}

type Daemon struct {
	srv *httptest.Server

	mu       sync.Mutex
	objects  map[string][]byte
	routes   map[string]http.HandlerFunc
	requests []LoggedRequest

	// NoRanges makes object GETs ignore Range headers and answer 200 with
	// the full body, like a daemon that does not support ranges.
	NoRanges bool

	// HideLength suppresses Content-Length (and range support) on object
	// responses, like a daemon streaming an object of undeclared size.
	HideLength bool

	// BodyDelay stalls between response headers and body bytes, long enough
	// for tests to cancel mid-flight.
	BodyDelay time.Duration
}

func NewDaemon(t *testing.T) *Daemon {
	t.Helper()

	d := &Daemon{
		objects: map[string][]byte{},
		routes:  map[string]http.HandlerFunc{},
	}
	d.srv = httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(d.srv.Close)
	return d
}

func (d *Daemon) URL() string {
	return d.srv.URL
}

func (d *Daemon) SetObject(path string, b []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[strings.TrimPrefix(path, "/")] = b
}

func (d *Daemon) Object(path string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.objects[strings.TrimPrefix(path, "/")]
	return b, ok
}

// HandleJSON makes "METHOD path" answer 200 with the given JSON text.
func (d *Daemon) HandleJSON(method, path, body string) {
	d.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func (d *Daemon) HandleFunc(method, path string, h http.HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[method+" "+path] = h
}

// Requests returns everything the daemon has served so far.
func (d *Daemon) Requests() []LoggedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]LoggedRequest(nil), d.requests...)
}

func (d *Daemon) ResetRequests() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = nil
}

// RangeGets counts object GETs which carried a Range header.
func (d *Daemon) RangeGets() int {
	n := 0
	for _, r := range d.Requests() {
		if r.Method == http.MethodGet && r.Range != "" {
			n++
		}
	}
	return n
}

func (d *Daemon) serve(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	d.requests = append(d.requests, LoggedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Range:  r.Header.Get("Range"),
	})
	route := d.routes[r.Method+" "+r.URL.Path]
	d.mu.Unlock()

	if user, pass, ok := r.BasicAuth(); !ok || user != "api" || pass != Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if route != nil {
		route(w, r)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/worker/objects/") {
		d.serveObject(w, r, strings.TrimPrefix(r.URL.Path, "/worker/objects/"))
		return
	}

	http.NotFound(w, r)
}

func (d *Daemon) serveObject(w http.ResponseWriter, r *http.Request, path string) {
	switch r.Method {
	case http.MethodPut:
		b, err := readAll(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		d.SetObject(path, b)
		return

	case http.MethodDelete:
		d.mu.Lock()
		_, ok := d.objects[path]
		delete(d.objects, path)
		d.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
		}
		return
	}

	body, ok := d.Object(path)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if !d.HideLength {
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("ETag", fmt.Sprintf("%q", path))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Last-Modified", time.Unix(1700000000, 0).UTC().Format(http.TimeFormat))
	}

	if r.Method == http.MethodHead {
		if !d.HideLength {
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	status := http.StatusOK
	serve := body
	if rng := r.Header.Get("Range"); rng != "" && !d.NoRanges && !d.HideLength {
		first, last, ok := parseRange(rng, int64(len(body)))
		if !ok {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", len(body)))
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", first, last, len(body)))
		status = http.StatusPartialContent
		serve = body[first : last+1]
	}

	if d.HideLength {
		w.WriteHeader(status)
		if f, fok := w.(http.Flusher); fok {
			f.Flush() // force chunked transfer, no Content-Length
		}
	} else {
		w.Header().Set("Content-Length", strconv.Itoa(len(serve)))
		w.WriteHeader(status)
	}

	if d.BodyDelay > 0 {
		if f, fok := w.(http.Flusher); fok {
			f.Flush()
		}
		select {
		case <-r.Context().Done():
			return
		case <-time.After(d.BodyDelay):
		}
	}

	_, _ = w.Write(serve)
}

// parseRange handles the "bytes=first-" and "bytes=first-last" forms the
// client actually sends.
func parseRange(v string, size int64) (first, last int64, ok bool) {
	span, found := strings.CutPrefix(v, "bytes=")
	if !found {
		return 0, 0, false
	}
	firstStr, lastStr, found := strings.Cut(span, "-")
	if !found {
		return 0, 0, false
	}
	first, err := strconv.ParseInt(firstStr, 10, 64)
	if err != nil || first >= size {
		return 0, 0, false
	}
	last = size - 1
	if lastStr != "" {
		last, err = strconv.ParseInt(lastStr, 10, 64)
		if err != nil || last < first {
			return 0, 0, false
		}
		if last >= size {
			last = size - 1
		}
	}
	return first, last, true
}

func readAll(r *http.Request) ([]byte, error) {
	defer func() { _ = r.Body.Close() }()
	return io.ReadAll(r.Body)
}
