package client

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/renhive/renterd-go/pkg/api"
)

// Call executes req, maps error statuses to the shared error types, and
// decodes the JSON response into out. Pass nil out for endpoints which
// respond with an empty body.
func Call(ctx context.Context, exec api.Executor, req *api.Request, out any) error {
	resp, err := exec.Do(ctx, req)
	if err != nil {
		return &api.Transport{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.Status == 401:
		return &api.Unauthorized{}
	case resp.Status == 404:
		return &api.NotFound{Path: req.Path}
	case resp.Status >= 400:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &api.StatusError{Status: resp.Status, Text: strings.TrimSpace(string(b))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
