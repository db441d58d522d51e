package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/renhive/renterd-go/pkg/client"
)

func objectPath(path string) string {
	return "bus/objects/" + strings.TrimPrefix(path, "/")
}

// ObjectMetadata is the bus's record of one stored object (or, for paths
// ending in a slash, one directory entry).
type ObjectMetadata struct {
	ETag     string    `json:"eTag"`
	Health   float64   `json:"health"`
	ModTime  time.Time `json:"modTime"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mimeType"`
}

// Object is the full metadata record, including the erasure-coded slab
// layout. Slabs are passed through undecoded.
type Object struct {
	ObjectMetadata

	UserMetadata map[string]string `json:"metadata"`
	Key          string            `json:"key"`
	Slabs        []json.RawMessage `json:"slabs"`
}

// ObjectResponse is what the bus returns for an object path: the object
// itself for a file, directory entries for a path ending in "/".
type ObjectResponse struct {
	Object  *Object          `json:"object"`
	Entries []ObjectMetadata `json:"entries"`
	HasMore bool             `json:"hasMore"`
}

// ObjectQuery narrows an Object call. The zero value asks for everything.
type ObjectQuery struct {
	Bucket string
	Prefix string
	Offset int
	Marker string
	Limit  int
}

func (c *Client) Object(ctx context.Context, path string, q ObjectQuery) (ObjectResponse, error) {
	b := client.Get(objectPath(path))
	if q.Bucket != "" {
		b.Param("bucket", q.Bucket)
	}
	if q.Prefix != "" {
		b.Param("prefix", q.Prefix)
	}
	if q.Offset > 0 {
		b.Param("offset", strconv.Itoa(q.Offset))
	}
	if q.Marker != "" {
		b.Param("marker", q.Marker)
	}
	if q.Limit > 0 {
		b.Param("limit", strconv.Itoa(q.Limit))
	}
	req, err := b.Build()
	if err != nil {
		return ObjectResponse{}, err
	}
	var resp ObjectResponse
	if err := client.Call(ctx, c.exec, req, &resp); err != nil {
		return ObjectResponse{}, fmt.Errorf("get object %q: %w", path, err)
	}
	return resp, nil
}

type listRequest struct {
	Bucket string `json:"bucket,omitempty"`
	Limit  int    `json:"limit"`
	Prefix string `json:"prefix,omitempty"`
	Marker string `json:"marker,omitempty"`
}

type listResponse struct {
	HasMore    bool             `json:"hasMore"`
	NextMarker string           `json:"nextMarker"`
	Objects    []ObjectMetadata `json:"objects"`
}

// ObjectLister pages through all objects under a prefix via the daemon's
// marker pagination. Each Next call fetches one batch.
type ObjectLister struct {
	c      *Client
	req    listRequest
	marker string
	done   bool
}

// ListObjects returns a lister over the bucket's objects. batchSize bounds
// how many records each underlying request asks for.
func (c *Client) ListObjects(bucket, prefix string, batchSize int) *ObjectLister {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ObjectLister{
		c: c,
		req: listRequest{
			Bucket: bucket,
			Prefix: prefix,
			Limit:  batchSize,
		},
	}
}

// Next returns the next batch of objects, or io.EOF when the listing is
// exhausted. A failed call does not advance the lister; it can be retried.
func (l *ObjectLister) Next(ctx context.Context) ([]ObjectMetadata, error) {
	if l.done {
		return nil, io.EOF
	}

	body := l.req
	body.Marker = l.marker
	req, err := client.Post("bus/objects/list").JSON(body).Build()
	if err != nil {
		return nil, err
	}
	var resp listResponse
	if err := client.Call(ctx, l.c.exec, req, &resp); err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	l.marker = resp.NextMarker
	if !resp.HasMore {
		l.done = true
	}
	if len(resp.Objects) == 0 {
		if l.done {
			return nil, io.EOF
		}
		// some daemons page with empty batches before the end
		return l.Next(ctx)
	}
	return resp.Objects, nil
}

// SearchObjects finds objects whose names contain key.
func (c *Client) SearchObjects(ctx context.Context, key, bucket string, offset, limit int) ([]ObjectMetadata, error) {
	b := client.Get("bus/search/objects")
	if key != "" {
		b.Param("key", key)
	}
	if bucket != "" {
		b.Param("bucket", bucket)
	}
	if offset > 0 {
		b.Param("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		b.Param("limit", strconv.Itoa(limit))
	}
	req, err := b.Build()
	if err != nil {
		return nil, err
	}
	var found []ObjectMetadata
	if err := client.Call(ctx, c.exec, req, &found); err != nil {
		return nil, fmt.Errorf("search objects: %w", err)
	}
	return found, nil
}

// DeleteObject removes the object's metadata record. With batch set, path is
// a prefix and everything under it goes.
func (c *Client) DeleteObject(ctx context.Context, path, bucket string, batch bool) error {
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
		return fmt.Errorf("delete object %q: %w", path, err)
	}
	return nil
}

// CopyObject duplicates an object, possibly across buckets.
func (c *Client) CopyObject(ctx context.Context, srcBucket, srcPath, dstBucket, dstPath string) error {
	req, err := client.Post("bus/objects/copy").JSON(struct {
		SourceBucket      string `json:"sourceBucket"`
		SourcePath        string `json:"sourcePath"`
		DestinationBucket string `json:"destinationBucket"`
		DestinationPath   string `json:"destinationPath"`
	}{srcBucket, srcPath, dstBucket, dstPath}).Build()
	if err != nil {
		return err
	}
	if err := client.Call(ctx, c.exec, req, nil); err != nil {
		return fmt.Errorf("copy object %q: %w", srcPath, err)
	}
	return nil
}

// RenameMode selects whether a rename applies to one object or to every
// object under a prefix.
type RenameMode string

const (
	RenameSingle RenameMode = "single"
	RenameMulti  RenameMode = "multi"
)

// RenameObject renames an object (or, in multi mode, a prefix). force
// overwrites an existing target.
func (c *Client) RenameObject(ctx context.Context, bucket, from, to string, mode RenameMode, force bool) error {
	req, err := client.Post("bus/objects/rename").JSON(struct {
		Bucket string     `json:"bucket"`
		Force  bool       `json:"force"`
		From   string     `json:"from"`
		To     string     `json:"to"`
		Mode   RenameMode `json:"mode"`
	}{bucket, force, from, to, mode}).Build()
	if err != nil {
		return err
	}
	if err := client.Call(ctx, c.exec, req, nil); err != nil {
		return fmt.Errorf("rename object %q: %w", from, err)
	}
	return nil
}
