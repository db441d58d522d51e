package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/renhive/renterd-go/pkg/api"
	"github.com/renhive/renterd-go/pkg/client"
	"github.com/renhive/renterd-go/pkg/object"
)

// objectPath joins a caller path onto the worker objects route. Leading
// slashes are the caller's convention, not the daemon's.
func objectPath(path string) string {
	return "worker/objects/" + strings.TrimPrefix(path, "/")
}

func cacheKey(bucket, path string) string {
	return bucket + "\x00" + strings.TrimPrefix(path, "/")
}

// getRequest is the ranged-GET shape for an object, shared by every stream
// opened from its handle.
func getRequest(path, bucket string) *api.Request {
	b := client.Get(objectPath(path))
	if bucket != "" {
		b.Param("bucket", bucket)
	}
	req, _ := b.Build()
	return req
}

// Stat probes an object with a HEAD request and returns a downloadable
// handle carrying its metadata. Objects the daemon serves with
// "Accept-Ranges: bytes" and a nonzero length are seekable.
func (c *Client) Stat(ctx context.Context, path, bucket string) (*object.Handle, error) {
	if c.statCache != nil {
		if info, ok := c.statCache.Get(cacheKey(bucket, path)); ok {
			return object.NewHandle(c.exec, getRequest(path, bucket), info), nil
		}
	}

	b := client.Head(objectPath(path))
	if bucket != "" {
		b.Param("bucket", bucket)
	}
	req, err := b.Build()
	if err != nil {
		return nil, err
	}

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return nil, &api.Transport{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.Status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &api.NotFound{Path: path}
	case http.StatusUnauthorized:
		return nil, &api.Unauthorized{}
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &api.StatusError{Status: resp.Status, Text: strings.TrimSpace(string(b))}
	}

	info := object.Info{
		Path:        path,
		Bucket:      bucket,
		Size:        -1,
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        resp.Header.Get("ETag"),
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return nil, &api.Protocol{Reason: fmt.Sprintf("invalid Content-Length %q", cl)}
		}
		info.Size = n
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		t, err := http.ParseTime(lm)
		if err != nil {
			return nil, &api.Protocol{Reason: fmt.Sprintf("invalid Last-Modified %q", lm)}
		}
		info.LastModified = t
	}
	info.Seekable = strings.HasPrefix(resp.Header.Get("Accept-Ranges"), "bytes") && info.Size > 0

	if c.statCache != nil {
		c.statCache.Add(cacheKey(bucket, path), info)
	}
	return object.NewHandle(c.exec, getRequest(path, bucket), info), nil
}

// Upload streams r to the daemon as the object at path. contentType may be
// empty.
func (c *Client) Upload(ctx context.Context, path, bucket, contentType string, r io.Reader) error {
	b := client.Put(objectPath(path)).Stream(r, contentType)
	if bucket != "" {
		b.Param("bucket", bucket)
	}
	req, err := b.Build()
	if err != nil {
		return err
	}
	if err := client.Call(ctx, c.exec, req, nil); err != nil {
		return fmt.Errorf("upload %q: %w", path, err)
	}
	if c.statCache != nil {
		c.statCache.Remove(cacheKey(bucket, path))
	}
	return nil
}

// Delete removes the object at path. With batch set, path is treated as a
// prefix and everything under it goes.
func (c *Client) Delete(ctx context.Context, path, bucket string, batch bool) error {
	b := client.Delete(objectPath(path))
	if bucket != "" {
		b.Param("bucket", bucket)
	}
	b.Param("batch", strconv.FormatBool(batch))
	req, err := b.Build()
	if err != nil {
		return err
	}
	if err := client.Call(ctx, c.exec, req, nil); err != nil {
		return fmt.Errorf("delete %q: %w", path, err)
	}
	if c.statCache != nil {
		c.statCache.Remove(cacheKey(bucket, path))
	}
	return nil
}
