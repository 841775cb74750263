package system_test

import (
	"context"
	"math"
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
	"github.com/apache/maven-resolver-sub005/pkg/resolve"
	"github.com/apache/maven-resolver-sub005/pkg/session"
	"github.com/apache/maven-resolver-sub005/pkg/system"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

func metadataResolverStub(t *testing.T, local localrepo.Manager, sess *session.Session) *metadata.Resolver {
	t.Helper()
	lay := layout.NewMaven2()
	connectors := metadata.ConnectorFactory(func(repo remoterepo.Repository) (*connector.Connector, error) {
		return connector.New(transport.NewFileTransporter(t.TempDir()), lay), nil
	})
	return metadata.New(local, sess.UpdateChecks, connectors, nil, sess)
}

func newTestSystem(t *testing.T, remoteDir string) *system.System {
	t.Helper()
	lay := layout.NewMaven2()
	local := localrepo.NewSimple(t.TempDir(), lay)
	sess := session.New()
	connectors := resolve.ConnectorFactory(func(repo remoterepo.Repository) (*connector.Connector, error) {
		return connector.New(transport.NewFileTransporter(remoteDir), lay), nil
	})
	resolver := resolve.New(local, sess.UpdateChecks, connectors, nil, nil, sess)

	s, err := system.New(system.Config{Resolver: resolver, Metadata: metadataResolverStub(t, local, sess)})
	require.NoError(t, err)
	return s
}

func TestNewRequiresResolverAndMetadata(t *testing.T) {
	_, err := system.New(system.Config{})
	assert.Error(t, err)
}

func TestResolveArtifactsFansOutConcurrently(t *testing.T) {
	remoteDir := t.TempDir()
	lay := layout.NewMaven2()
	artifacts := []artifact.Artifact{artifact.New("g", "a", "1.0"), artifact.New("g", "b", "1.0")}
	for _, a := range artifacts {
		remotePath := filepath.Join(remoteDir, lay.ArtifactPath(a))
		require.NoError(t, os.MkdirAll(filepath.Dir(remotePath), 0o755))
		require.NoError(t, os.WriteFile(remotePath, []byte(a.ArtifactID), 0o644))
	}

	s := newTestSystem(t, remoteDir)
	repo := remoterepo.Repository{ID: "central", ReleasesPolicy: remoterepo.DefaultPolicy(), SnapshotsPolicy: remoterepo.DefaultPolicy()}

	reqs := make([]resolve.Request, len(artifacts))
	for i, a := range artifacts {
		reqs[i] = resolve.Request{Artifact: a, Repositories: []remoterepo.Repository{repo}}
	}

	results := s.ResolveArtifacts(context.Background(), reqs)
	require.Len(t, results, 2)
	for i, res := range results {
		require.Empty(t, res.Exceptions)
		data, err := os.ReadFile(res.Artifact.File)
		require.NoError(t, err)
		assert.Equal(t, artifacts[i].ArtifactID, string(data))
	}
}

func TestResolveArtifactRoutesEventsThroughDispatcherByDefault(t *testing.T) {
	remoteDir := t.TempDir()
	lay := layout.NewMaven2()
	a := artifact.New("g", "a", "1.0")
	remotePath := filepath.Join(remoteDir, lay.ArtifactPath(a))
	require.NoError(t, os.MkdirAll(filepath.Dir(remotePath), 0o755))
	require.NoError(t, os.WriteFile(remotePath, []byte("jar"), 0o644))

	s := newTestSystem(t, remoteDir)
	var events []system.Event
	s.Dispatcher().Register(recordingEventListener{&events})

	repo := remoterepo.Repository{ID: "central", ReleasesPolicy: remoterepo.DefaultPolicy(), SnapshotsPolicy: remoterepo.DefaultPolicy()}
	result := s.ResolveArtifact(context.Background(), resolve.Request{Artifact: a, Repositories: []remoterepo.Repository{repo}})
	require.Empty(t, result.Exceptions)

	require.Len(t, events, 2)
	assert.Equal(t, "ARTIFACT_RESOLVING", events[0].Kind)
	assert.Equal(t, "ARTIFACT_RESOLVED", events[1].Kind)
}

type recordingEventListener struct {
	events *[]system.Event
}

func (r recordingEventListener) OnEvent(e system.Event) { *r.events = append(*r.events, e) }

func TestRegistryOrdersByPriorityAndDropsNaN(t *testing.T) {
	reg := system.NewRegistry()
	reg.Register(priorityEntry(1))
	reg.Register(priorityEntry(5))
	reg.Register(priorityEntry(math.NaN()))
	reg.Register(priorityEntry(3))

	ordered := reg.Ordered()
	require.Len(t, ordered, 3)
	assert.Equal(t, 5.0, ordered[0].Priority())
	assert.Equal(t, 3.0, ordered[1].Priority())
	assert.Equal(t, 1.0, ordered[2].Priority())
}

type priorityEntry float64

func (p priorityEntry) Priority() float64 { return float64(p) }
