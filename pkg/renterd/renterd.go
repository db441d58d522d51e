// Package renterd ties the endpoint groups together behind one client. Most
// callers construct this and fan out via Bus, Worker, and Autopilot; the
// individual packages remain usable on their own with any api.Executor.
package renterd

import (
	"context"
	"fmt"
	"io"

	"github.com/renhive/renterd-go/pkg/autopilot"
	"github.com/renhive/renterd-go/pkg/bus"
	"github.com/renhive/renterd-go/pkg/client"
	"github.com/renhive/renterd-go/pkg/download"
	"github.com/renhive/renterd-go/pkg/object"
	"github.com/renhive/renterd-go/pkg/stats"
	"github.com/renhive/renterd-go/pkg/worker"
)

type Client struct {
	exec      *client.Executor
	bus       *bus.Client
	worker    *worker.Client
	autopilot *autopilot.Client
	rec       *stats.Recorder
}

type Option func(*options)

type options struct {
	execOpts   []client.Option
	workerOpts []worker.Option
	recorder   *stats.Recorder
}

// WithExecutorOptions passes options through to the underlying HTTP
// executor.
func WithExecutorOptions(opts ...client.Option) Option {
	return func(o *options) {
		o.execOpts = append(o.execOpts, opts...)
	}
}

// WithStatCache enables the worker client's object metadata cache.
func WithStatCache(n int) Option {
	return func(o *options) {
		o.workerOpts = append(o.workerOpts, worker.WithStatCache(n))
	}
}

// WithStats records per-route request statistics into rec, retrievable via
// Stats.
func WithStats(rec *stats.Recorder) Option {
	return func(o *options) {
		o.recorder = rec
		o.execOpts = append(o.execOpts, client.WithRecorder(rec))
	}
}

// New connects to the daemon at baseURL using the given API password.
func New(baseURL, password string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	exec, err := client.NewExecutor(baseURL, password, o.execOpts...)
	if err != nil {
		return nil, fmt.Errorf("renterd client: %w", err)
	}

	return &Client{
		exec:      exec,
		bus:       bus.New(exec),
		worker:    worker.New(exec, o.workerOpts...),
		autopilot: autopilot.New(exec),
		rec:       o.recorder,
	}, nil
}

func (c *Client) Bus() *bus.Client {
	return c.bus
}

func (c *Client) Worker() *worker.Client {
	return c.worker
}

func (c *Client) Autopilot() *autopilot.Client {
	return c.autopilot
}

// Stats returns a snapshot of per-route request statistics, or nil when
// WithStats was not configured.
func (c *Client) Stats() map[string]stats.Route {
	if c.rec == nil {
		return nil
	}
	return c.rec.Snapshot()
}

// Object stats the object and returns its downloadable handle.
func (c *Client) Object(ctx context.Context, path, bucket string) (*object.Handle, error) {
	return c.worker.Stat(ctx, path, bucket)
}

// Download copies the whole object into w, fetching ranges in parallel when
// the object supports it.
func (c *Client) Download(ctx context.Context, path, bucket string, w io.WriterAt, opts download.Options) (int64, error) {
	h, err := c.worker.Stat(ctx, path, bucket)
	if err != nil {
		return 0, err
	}
	return download.Fetch(ctx, h, w, opts)
}
