package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/renhive/renterd-go/pkg/download"
	"github.com/renhive/renterd-go/pkg/renterd"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Println("Usage: renterfetch <stat|get|put|ls|rm> [arguments]")
		os.Exit(1)
	}

	cmd := os.Args[1]

	apiURL := os.Getenv("RENTERD_API_URL")
	if apiURL == "" {
		log.Fatalf("Required: RENTERD_API_URL")
	}

	password := os.Getenv("RENTERD_API_PASSWORD")
	if password == "" {
		log.Fatalf("Required: RENTERD_API_PASSWORD")
	}

	bucket := os.Getenv("RENTERD_BUCKET")

	c, err := renterd.New(apiURL, password)
	if err != nil {
		log.Fatalf("renterd.New: %v", err)
	}

	switch cmd {
	case "stat":
		cmdStat(ctx, c, bucket, arg(2, "path"))
	case "get":
		cmdGet(ctx, c, bucket, arg(2, "path"), arg(3, "dest"))
	case "put":
		cmdPut(ctx, c, bucket, arg(2, "path"), os.Stdin)
	case "ls":
		cmdLs(ctx, c, bucket, arg(2, "prefix"))
	case "rm":
		cmdRm(ctx, c, bucket, arg(2, "path"))
	default:
		log.Fatalf("Unknown command: %s", cmd)
	}
}

func arg(i int, name string) string {
	if len(os.Args) <= i {
		log.Fatalf("Required argument: %s", name)
	}
	return os.Args[i]
}

func cmdStat(ctx context.Context, c *renterd.Client, bucket, path string) {
	h, err := c.Object(ctx, path, bucket)
	if err != nil {
		log.Fatalf("Object: %s", err)
	}

	fmt.Printf("path:\t%s\n", h.Path)
	if size, ok := h.Length(); ok {
		fmt.Printf("size:\t%d\n", size)
	} else {
		fmt.Printf("size:\tunknown\n")
	}
	fmt.Printf("type:\t%s\n", h.ContentType)
	fmt.Printf("etag:\t%s\n", h.ETag)
	fmt.Printf("seekable:\t%t\n", h.Seekable)
}

func cmdGet(ctx context.Context, c *renterd.Client, bucket, path, dest string) {
	f, err := os.Create(dest)
	if err != nil {
		log.Fatalf("os.Create: %s", err)
	}
	defer f.Close()

	n, err := c.Download(ctx, path, bucket, f, download.Options{})
	if err != nil {
		log.Fatalf("Download: %s", err)
	}

	fmt.Printf("Wrote %d bytes to: %s\n", n, dest)
}

func cmdPut(ctx context.Context, c *renterd.Client, bucket, path string, r io.Reader) {
	err := c.Worker().Upload(ctx, path, bucket, "", r)
	if err != nil {
		log.Fatalf("Upload: %s", err)
	}

	fmt.Println("OK")
}

func cmdLs(ctx context.Context, c *renterd.Client, bucket, prefix string) {
	n := 0
	it := c.Bus().ListObjects(bucket, prefix, 100)
	for {
		batch, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("ListObjects: %s", err)
		}
		for _, o := range batch {
			fmt.Printf("%12d  %s\n", o.Size, o.Name)
			n++
		}
	}

	fmt.Fprintf(os.Stderr, "%d objects\n", n)
}

func cmdRm(ctx context.Context, c *renterd.Client, bucket, path string) {
	err := c.Worker().Delete(ctx, path, bucket, false)
	if err != nil {
		log.Fatalf("Delete: %s", err)
	}

	fmt.Println("OK")
}
