package metadata_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/connector"
	"github.com/apache/maven-resolver-sub005/pkg/layout"
	"github.com/apache/maven-resolver-sub005/pkg/localrepo"
	"github.com/apache/maven-resolver-sub005/pkg/metadata"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/session"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

func newTestResolver(t *testing.T, remoteDir string) (*metadata.Resolver, localrepo.Manager) {
	t.Helper()
	lay := layout.NewMaven2()
	local := localrepo.NewSimple(t.TempDir(), lay)
	sess := session.New()

	connectors := metadata.ConnectorFactory(func(repo remoterepo.Repository) (*connector.Connector, error) {
		return connector.New(transport.NewFileTransporter(remoteDir), lay), nil
	})
	return metadata.New(local, sess.UpdateChecks, connectors, nil, sess), local
}

func TestResolveFetchesFromRemoteWhenMissingLocally(t *testing.T) {
	remoteDir := t.TempDir()
	lay := layout.NewMaven2()
	m := artifact.Metadata{GroupID: "g", ArtifactID: "a", Nature: artifact.ReleaseOrSnapshot}
	remotePath := filepath.Join(remoteDir, lay.MetadataPath(m))
	require.NoError(t, os.MkdirAll(filepath.Dir(remotePath), 0o755))
	require.NoError(t, os.WriteFile(remotePath, []byte("<metadata/>"), 0o644))

	r, _ := newTestResolver(t, remoteDir)
	repo := remoterepo.Repository{ID: "central", ReleasesPolicy: remoterepo.DefaultPolicy(), SnapshotsPolicy: remoterepo.DefaultPolicy()}

	result := r.Resolve(context.Background(), metadata.Request{
		Metadata:     m,
		Repositories: []remoterepo.Repository{repo},
	})
	assert.Empty(t, result.Exceptions)
	assert.True(t, result.FileExists)
	assert.Equal(t, "central", result.UpdatedFrom)
	data, err := os.ReadFile(result.File)
	require.NoError(t, err)
	assert.Equal(t, "<metadata/>", string(data))
}

func TestResolveFavorsLocalCopyWithoutRemoteCheck(t *testing.T) {
	r, local := newTestResolver(t, t.TempDir())
	m := artifact.Metadata{GroupID: "g", ArtifactID: "a"}
	localPath := local.PathForLocalMetadata(m)
	require.NoError(t, os.MkdirAll(filepath.Dir(localPath), 0o755))
	require.NoError(t, os.WriteFile(localPath, []byte("local"), 0o644))

	result := r.Resolve(context.Background(), metadata.Request{
		Metadata:             m,
		FavorLocalRepository: true,
		Repositories:          []remoterepo.Repository{{ID: "central"}},
	})
	assert.Empty(t, result.Exceptions)
	assert.Empty(t, result.UpdatedFrom)
	assert.True(t, result.FileExists)
}

func TestResolveDeletesLocalCopyWhenRemoteReportsMissing(t *testing.T) {
	r, local := newTestResolver(t, t.TempDir())
	m := artifact.Metadata{GroupID: "g", ArtifactID: "a"}
	localPath := local.PathForLocalMetadata(m)
	require.NoError(t, os.MkdirAll(filepath.Dir(localPath), 0o755))
	require.NoError(t, os.WriteFile(localPath, []byte("stale"), 0o644))

	repo := remoterepo.Repository{ID: "central", ReleasesPolicy: remoterepo.Policy{UpdatePolicy: remoterepo.UpdateAlways}, SnapshotsPolicy: remoterepo.Policy{UpdatePolicy: remoterepo.UpdateAlways}}
	result := r.Resolve(context.Background(), metadata.Request{
		Metadata:                 m,
		DeleteLocalCopyIfMissing: true,
		Repositories:              []remoterepo.Repository{repo},
	})
	assert.NotEmpty(t, result.Exceptions)
	assert.False(t, result.FileExists)
	_, err := os.Stat(localPath)
	assert.True(t, os.IsNotExist(err))
}
