package client

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	req, err := Get("worker/objects/foo/bar").Param("bucket", "testbucket").Build()
	require.NoError(t, err)
	require.Equal(t, http.MethodGet, req.Method)
	require.Equal(t, "worker/objects/foo/bar", req.Path)
	require.Equal(t, "testbucket", req.Query.Get("bucket"))
	require.Nil(t, req.Body)

	req, err = Head("worker/objects/foo/bar").Build()
	require.NoError(t, err)
	require.Equal(t, http.MethodHead, req.Method)
	require.Nil(t, req.Query)

	req, err = Delete("bus/objects/foo/file.ext").Param("bucket", "bucket_name").Param("batch", "false").Build()
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, req.Method)
	require.Equal(t, "bucket_name", req.Query.Get("bucket"))
	require.Equal(t, "false", req.Query.Get("batch"))
}

func TestBuilderJSON(t *testing.T) {
	req, err := Post("autopilot/trigger").JSON(map[string]bool{"forceScan": true}).Build()
	require.NoError(t, err)
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))

	b, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"forceScan":true}`, string(b))
}

func TestBuilderStream(t *testing.T) {
	req, err := Put("worker/objects/file.ext").
		Stream(strings.NewReader("payload"), "application/funny-bytes").
		Build()
	require.NoError(t, err)
	require.Equal(t, "application/funny-bytes", req.Header.Get("Content-Type"))

	b, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.Equal(t, "payload", string(b))
}

func TestBuilderClone(t *testing.T) {
	req, err := Get("worker/objects/foo").Param("bucket", "b").Build()
	require.NoError(t, err)

	c := req.Clone()
	c.Query.Set("bucket", "other")
	c.Path = "changed"

	require.Equal(t, "b", req.Query.Get("bucket"))
	require.Equal(t, "worker/objects/foo", req.Path)
}
