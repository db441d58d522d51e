// Package autopilot wraps the daemon's autopilot API: its state, its
// contract/host configuration, and the loop trigger.
package autopilot

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

// State is the autopilot's build info plus what its maintenance loops are
// currently doing. Uptime arrives as integer milliseconds.
type State struct {
	Configured         bool      `json:"configured"`
	Migrating          bool      `json:"migrating"`
	MigratingLastStart time.Time `json:"migratingLastStart"`
	Pruning            bool      `json:"pruning"`
	PruningLastStart   time.Time `json:"pruningLastStart"`
	Scanning           bool      `json:"scanning"`
	ScanningLastStart  time.Time `json:"scanningLastStart"`
	UptimeMS           int64     `json:"uptimeMs"`

	types.State
}

// Uptime returns the reported uptime as a duration.
func (s State) Uptime() time.Duration {
	return time.Duration(s.UptimeMS) * time.Millisecond
}

func (c *Client) State(ctx context.Context) (State, error) {
	req, err := client.Get("autopilot/state").Build()
	if err != nil {
		return State{}, err
	}
	var s State
	if err := client.Call(ctx, c.exec, req, &s); err != nil {
		return State{}, fmt.Errorf("autopilot state: %w", err)
	}
	return s, nil
}

// ContractConfig governs contract formation. Allowance is a currency amount
// and crosses the wire as a decimal string.
type ContractConfig struct {
	Set         string         `json:"set"`
	Amount      uint64         `json:"amount"`
	Allowance   types.Currency `json:"allowance"`
	Period      uint64         `json:"period"`
	RenewWindow uint64         `json:"renewWindow"`
	Download    uint64         `json:"download"`
	Upload      uint64         `json:"upload"`
	Storage     uint64         `json:"storage"`
	Prune       bool           `json:"prune"`
}

// HostConfig governs host selection.
type HostConfig struct {
	AllowRedundantIPs     bool                        `json:"allowRedundantIPs"`
	MaxDowntimeHours      uint64                      `json:"maxDowntimeHours"`
	MinProtocolVersion    string                      `json:"minProtocolVersion"`
	MinRecentScanFailures uint64                      `json:"minRecentScanFailures"`
	ScoreOverrides        map[types.PublicKey]float64 `json:"scoreOverrides"`
}

type Config struct {
	Contracts ContractConfig `json:"contracts"`
	Hosts     HostConfig     `json:"hosts"`
}

func (c *Client) Config(ctx context.Context) (Config, error) {
	req, err := client.Get("autopilot/config").Build()
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := client.Call(ctx, c.exec, req, &cfg); err != nil {
		return Config{}, fmt.Errorf("autopilot config: %w", err)
	}
	return cfg, nil
}

func (c *Client) UpdateConfig(ctx context.Context, cfg Config) error {
	req, err := client.Put("autopilot/config").JSON(cfg).Build()
	if err != nil {
		return err
	}
	if err := client.Call(ctx, c.exec, req, nil); err != nil {
		return fmt.Errorf("update autopilot config: %w", err)
	}
	return nil
}

// Trigger kicks the autopilot's main loop. It reports whether a run was
// actually triggered.
func (c *Client) Trigger(ctx context.Context, forceScan bool) (bool, error) {
	req, err := client.Post("autopilot/trigger").JSON(struct {
		ForceScan bool `json:"forceScan"`
	}{forceScan}).Build()
	if err != nil {
		return false, err
	}
	var resp struct {
		Triggered bool `json:"triggered"`
	}
	if err := client.Call(ctx, c.exec, req, &resp); err != nil {
		return false, fmt.Errorf("autopilot trigger: %w", err)
	}
	return resp.Triggered, nil
}
