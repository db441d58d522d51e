package client

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/renhive/renterd-go/pkg/api"
)

// Builder assembles requests for the daemon one piece at a time. Each
// endpoint wrapper builds its request here and hands it to an executor or
// Call; the builder itself never talks to the network.
type Builder struct {
	req api.Request
	err error
}

func newBuilder(method, path string) *Builder {
	return &Builder{
		req: api.Request{
			Method: method,
			Path:   path,
		},
	}
}

func Get(path string) *Builder {
	return newBuilder(http.MethodGet, path)
}

func Post(path string) *Builder {
	return newBuilder(http.MethodPost, path)
}

func Put(path string) *Builder {
	return newBuilder(http.MethodPut, path)
}

func Delete(path string) *Builder {
	return newBuilder(http.MethodDelete, path)
}

func Head(path string) *Builder {
	return newBuilder(http.MethodHead, path)
}

// Param adds a query parameter.
func (b *Builder) Param(key, value string) *Builder {
	if b.req.Query == nil {
		b.req.Query = url.Values{}
	}
	b.req.Query.Add(key, value)
	return b
}

// JSON attaches v, encoded, as the request body.
func (b *Builder) JSON(v any) *Builder {
	enc, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("encode request body: %w", err)
		return b
	}
	b.req.Body = bytes.NewReader(enc)
	b.header("Content-Type", "application/json")
	return b
}

// Stream attaches r as the raw request body, e.g. for object uploads.
func (b *Builder) Stream(r io.Reader, contentType string) *Builder {
	b.req.Body = r
	if contentType != "" {
		b.header("Content-Type", contentType)
	}
	return b
}

func (b *Builder) header(key, value string) {
	if b.req.Header == nil {
		b.req.Header = http.Header{}
	}
	b.req.Header.Set(key, value)
}

func (b *Builder) Build() (*api.Request, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &b.req, nil
}
