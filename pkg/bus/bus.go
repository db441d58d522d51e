// Package bus wraps the daemon's bus API: cluster state, consensus, buckets,
// and object metadata. Object bytes go through the worker API; the bus only
// deals in metadata.
package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/renhive/renterd-go/pkg/api"
	"github.com/renhive/renterd-go/pkg/client"
	"github.com/renhive/renterd-go/pkg/types"
)

type Client struct {
	exec api.Executor
}

func New(exec api.Executor) *Client {
	return &Client{exec: exec}
}

func (c *Client) State(ctx context.Context) (types.State, error) {
	req, err := client.Get("bus/state").Build()
	if err != nil {
		return types.State{}, err
	}
	var s types.State
	if err := client.Call(ctx, c.exec, req, &s); err != nil {
		return types.State{}, fmt.Errorf("bus state: %w", err)
	}
	return s, nil
}

// ConsensusState is the daemon's view of the blockchain it follows.
type ConsensusState struct {
	BlockHeight   uint64    `json:"blockHeight"`
	LastBlockTime time.Time `json:"lastBlockTime"`
	Synced        bool      `json:"synced"`
}

func (c *Client) ConsensusState(ctx context.Context) (ConsensusState, error) {
	req, err := client.Get("bus/consensus/state").Build()
	if err != nil {
		return ConsensusState{}, err
	}
	var s ConsensusState
	if err := client.Call(ctx, c.exec, req, &s); err != nil {
		return ConsensusState{}, fmt.Errorf("consensus state: %w", err)
	}
	return s, nil
}
