package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/renhive/renterd-go/pkg/client"
)

// Policy is a bucket's access policy.
type Policy struct {
	PublicReadAccess bool `json:"publicReadAccess"`
}

type Bucket struct {
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Policy    Policy    `json:"policy"`
}

func (c *Client) Buckets(ctx context.Context) ([]Bucket, error) {
	req, err := client.Get("bus/buckets").Build()
	if err != nil {
		return nil, err
	}
	var buckets []Bucket
	if err := client.Call(ctx, c.exec, req, &buckets); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return buckets, nil
}

func (c *Client) Bucket(ctx context.Context, name string) (Bucket, error) {
	req, err := client.Get("bus/bucket/" + name).Build()
	if err != nil {
		return Bucket{}, err
	}
	var b Bucket
	if err := client.Call(ctx, c.exec, req, &b); err != nil {
		return Bucket{}, fmt.Errorf("get bucket %q: %w", name, err)
	}
	return b, nil
}

func (c *Client) CreateBucket(ctx context.Context, name string, policy Policy) error {
	req, err := client.Post("bus/buckets").JSON(struct {
		Name   string `json:"name"`
		Policy Policy `json:"policy"`
	}{name, policy}).Build()
	if err != nil {
		return err
	}
	if err := client.Call(ctx, c.exec, req, nil); err != nil {
		return fmt.Errorf("create bucket %q: %w", name, err)
	}
	return nil
}

func (c *Client) UpdateBucketPolicy(ctx context.Context, name string, policy Policy) error {
	req, err := client.Put("bus/bucket/"+name+"/policy").JSON(struct {
		Policy Policy `json:"policy"`
	}{policy}).Build()
	if err != nil {
		return err
	}
	if err := client.Call(ctx, c.exec, req, nil); err != nil {
		return fmt.Errorf("update bucket policy %q: %w", name, err)
	}
	return nil
}

func (c *Client) DeleteBucket(ctx context.Context, name string) error {
	req, err := client.Delete("bus/bucket/" + name).Build()
	if err != nil {
		return err
	}
	if err := client.Call(ctx, c.exec, req, nil); err != nil {
		return fmt.Errorf("delete bucket %q: %w", name, err)
	}
	return nil
}
