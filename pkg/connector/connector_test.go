package connector_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/checksum"
	"github.com/apache/maven-resolver-sub005/pkg/connector"
	"github.com/apache/maven-resolver-sub005/pkg/layout"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

type recordingListener struct {
	states []connector.State
}

func (l *recordingListener) OnStateChanged(kind, path string, state connector.State, err error) {
	l.states = append(l.states, state)
}

func TestConnectorPutThenGetRoundTrips(t *testing.T) {
	remoteDir := t.TempDir()
	localDir := t.TempDir()
	remote := transport.NewFileTransporter(remoteDir)
	c := connector.New(remote, layout.NewMaven2())

	uploadSrc := filepath.Join(localDir, "src.jar")
	require.NoError(t, os.WriteFile(uploadSrc, []byte("payload"), 0o644))

	upListener := &recordingListener{}
	uploads := []*connector.ArtifactUpload{{RemotePath: "g/a/1.0/a-1.0.jar", LocalPath: uploadSrc, Listener: upListener}}
	require.NoError(t, c.Put(context.Background(), uploads, nil))
	assert.NoError(t, uploads[0].Exception)
	assert.Equal(t, []connector.State{connector.Active, connector.DoneSuccess}, upListener.states)

	_, err := os.Stat(filepath.Join(remoteDir, "g/a/1.0/a-1.0.jar.sha1"))
	assert.NoError(t, err)

	downloadDst := filepath.Join(localDir, "dst.jar")
	downListener := &recordingListener{}
	downloads := []*connector.ArtifactDownload{{
		RemotePath:     "g/a/1.0/a-1.0.jar",
		LocalPath:      downloadDst,
		ChecksumPolicy: checksum.Warn,
		Listener:       downListener,
	}}
	require.NoError(t, c.Get(context.Background(), downloads, nil))
	assert.NoError(t, downloads[0].Exception)
	assert.Equal(t, []connector.State{connector.Active, connector.DoneSuccess}, downListener.states)

	data, err := os.ReadFile(downloadDst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestConnectorGetMissingRecordsPerItemError(t *testing.T) {
	remote := transport.NewFileTransporter(t.TempDir())
	c := connector.New(remote, layout.NewMaven2())

	downloads := []*connector.ArtifactDownload{{
		RemotePath: "missing/a-1.0.jar",
		LocalPath:  filepath.Join(t.TempDir(), "a-1.0.jar"),
	}}
	require.NoError(t, c.Get(context.Background(), downloads, nil))
	assert.Error(t, downloads[0].Exception)
}

func TestConnectorBoundsParallelism(t *testing.T) {
	remote := transport.NewFileTransporter(t.TempDir())
	c := connector.New(remote, layout.NewMaven2())
	c.Parallelism = 2
	assert.Equal(t, 2, c.Parallelism)
}
