package transport_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

func TestFileTransporterGetPut(t *testing.T) {
	dir := t.TempDir()
	tr := transport.NewFileTransporter(dir)
	ctx := context.Background()

	err := tr.Put(ctx, transport.PutRequest{Path: "g/a/1.0/a-1.0.jar", Body: strings.NewReader("hello")})
	require.NoError(t, err)

	res, err := tr.Get(ctx, transport.GetRequest{Path: "g/a/1.0/a-1.0.jar"})
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// target file must exist at its final path after a successful put
	_, err = os.Stat(filepath.Join(dir, "g/a/1.0/a-1.0.jar"))
	assert.NoError(t, err)
}

func TestFileTransporterNotFound(t *testing.T) {
	tr := transport.NewFileTransporter(t.TempDir())
	_, err := tr.Get(context.Background(), transport.GetRequest{Path: "missing"})
	assert.Error(t, err)
	assert.Error(t, tr.Peek(context.Background(), "missing"))
}

func TestFileTransporterResume(t *testing.T) {
	dir := t.TempDir()
	tr := transport.NewFileTransporter(dir)
	ctx := context.Background()
	require.NoError(t, tr.Put(ctx, transport.PutRequest{Path: "f", Body: strings.NewReader("0123456789")}))

	res, err := tr.Get(ctx, transport.GetRequest{Path: "f", ResumeFrom: 5})
	require.NoError(t, err)
	defer res.Body.Close()
	assert.True(t, res.Resumed)
	data, _ := io.ReadAll(res.Body)
	assert.Equal(t, "56789", string(data))
}

func TestOfflineControllerAllowList(t *testing.T) {
	oc := transport.OfflineController{Protocols: []string{"file"}, Hosts: []string{"internal.example.com"}}
	assert.NoError(t, oc.CheckOffline("file:///tmp/repo"))
	assert.NoError(t, oc.CheckOffline("https://internal.example.com/repo"))
	assert.Error(t, oc.CheckOffline("https://example.org/repo"))
}
