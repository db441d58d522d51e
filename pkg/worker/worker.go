// Package worker wraps the daemon's worker API: identity and status
// endpoints, and object up/downloads. Downloads hand back object handles
// which can be opened as plain or seekable streams.
package worker

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/renhive/renterd-go/pkg/api"
	"github.com/renhive/renterd-go/pkg/client"
	"github.com/renhive/renterd-go/pkg/object"
	"github.com/renhive/renterd-go/pkg/types"
)

type Client struct {
	exec api.Executor

	// statCache, when enabled, remembers object metadata by bucket+path so
	// repeated Stat calls skip the HEAD round trip. Uploads and deletes
	// through this client invalidate their entries.
	statCache *lru.Cache[string, object.Info]
}

type Option func(*Client)

// WithStatCache keeps the metadata of the n most recently statted objects.
func WithStatCache(n int) Option {
	return func(c *Client) {
		cache, err := lru.New[string, object.Info](n)
		if err != nil {
			panic(fmt.Sprintf("worker: bad stat cache size %d", n))
		}
		c.statCache = cache
	}
}

func New(exec api.Executor, opts ...Option) *Client {
	c := &Client{exec: exec}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the worker's identifier string.
func (c *Client) ID(ctx context.Context) (string, error) {
	req, err := client.Get("worker/id").Build()
	if err != nil {
		return "", err
	}
	var id string
	if err := client.Call(ctx, c.exec, req, &id); err != nil {
		return "", fmt.Errorf("worker id: %w", err)
	}
	return id, nil
}

// State is the worker's build and runtime info.
type State struct {
	ID string `json:"id"`
	types.State
}

func (c *Client) State(ctx context.Context) (State, error) {
	req, err := client.Get("worker/state").Build()
	if err != nil {
		return State{}, err
	}
	var s State
	if err := client.Call(ctx, c.exec, req, &s); err != nil {
		return State{}, fmt.Errorf("worker state: %w", err)
	}
	return s, nil
}

// MemoryStatus is one direction's memory accounting.
type MemoryStatus struct {
	Available uint64 `json:"available"`
	Total     uint64 `json:"total"`
}

// Memory is the worker's up/download memory budget.
type Memory struct {
	Download MemoryStatus `json:"download"`
	Upload   MemoryStatus `json:"upload"`
}

func (c *Client) Memory(ctx context.Context) (Memory, error) {
	req, err := client.Get("worker/memory").Build()
	if err != nil {
		return Memory{}, err
	}
	var m Memory
	if err := client.Call(ctx, c.exec, req, &m); err != nil {
		return Memory{}, fmt.Errorf("worker memory: %w", err)
	}
	return m, nil
}
