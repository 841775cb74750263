package rangeresolve_test

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
	"github.com/apache/maven-resolver-sub005/pkg/rangeresolve"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/session"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

const gaMetadataXML = `<metadata>
  <versioning>
    <versions>
      <version>0.9</version>
      <version>1.0</version>
      <version>1.5</version>
      <version>2.0</version>
    </versions>
  </versioning>
</metadata>`

func newTestRangeResolver(t *testing.T, remoteDir string) *rangeresolve.Resolver {
	t.Helper()
	lay := layout.NewMaven2()
	local := localrepo.NewSimple(t.TempDir(), lay)
	sess := session.New()
	connectors := metadata.ConnectorFactory(func(repo remoterepo.Repository) (*connector.Connector, error) {
		return connector.New(transport.NewFileTransporter(remoteDir), lay), nil
	})
	mr := metadata.New(local, sess.UpdateChecks, connectors, nil, sess)
	return rangeresolve.New(mr)
}

func TestResolveRangeUnionsAndFilters(t *testing.T) {
	remoteDir := t.TempDir()
	lay := layout.NewMaven2()
	ga := artifact.Metadata{GroupID: "g", ArtifactID: "a"}
	remotePath := filepath.Join(remoteDir, lay.MetadataPath(ga))
	require.NoError(t, os.MkdirAll(filepath.Dir(remotePath), 0o755))
	require.NoError(t, os.WriteFile(remotePath, []byte(gaMetadataXML), 0o644))

	r := newTestRangeResolver(t, remoteDir)
	repo := remoterepo.Repository{ID: "central", ReleasesPolicy: remoterepo.DefaultPolicy(), SnapshotsPolicy: remoterepo.DefaultPolicy()}

	result := r.Resolve(context.Background(), rangeresolve.Request{
		Artifact:     artifact.New("g", "a", "[1.0,2.0)"),
		Repositories: []remoterepo.Repository{repo},
	})
	assert.Empty(t, result.Exceptions)
	require.Len(t, result.Versions, 2)
	assert.Equal(t, "1.0", result.Versions[0].Version.String())
	assert.Equal(t, "1.5", result.Versions[1].Version.String())
	assert.Equal(t, "central", result.Versions[0].Repository.ID)
}

func TestResolveLiteralPassesThrough(t *testing.T) {
	r := newTestRangeResolver(t, t.TempDir())
	result := r.Resolve(context.Background(), rangeresolve.Request{
		Artifact: artifact.New("g", "a", "1.2.3"),
	})
	assert.Empty(t, result.Exceptions)
	require.Len(t, result.Versions, 1)
	assert.Equal(t, "1.2.3", result.Versions[0].Version.String())
}
