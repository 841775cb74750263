package deploy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/connector"
	"github.com/apache/maven-resolver-sub005/pkg/deploy"
	"github.com/apache/maven-resolver-sub005/pkg/layout"
	"github.com/apache/maven-resolver-sub005/pkg/localrepo"
	"github.com/apache/maven-resolver-sub005/pkg/metadata"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/session"
	"github.com/apache/maven-resolver-sub005/pkg/syncctx"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

type recordingListener struct {
	events []string
}

func (r *recordingListener) OnEvent(kind, coordinate string, err error) {
	r.events = append(r.events, kind+":"+coordinate)
}

type concatMerger struct{}

func (concatMerger) Merge(currentFile, resultFile string) error {
	current, err := os.ReadFile(currentFile)
	if err != nil {
		return err
	}
	result, err := os.ReadFile(resultFile)
	if err != nil {
		return err
	}
	merged := append(append([]byte{}, current...), result...)
	return os.WriteFile(resultFile, merged, 0o644)
}

func TestInstallCopiesArtifactAndRegistersIt(t *testing.T) {
	lay := layout.NewMaven2()
	local := localrepo.NewSimple(t.TempDir(), lay)
	installer := deploy.NewInstaller(local, syncctx.NewLocal(local.PathForLocalArtifact, local.PathForLocalMetadata))

	a := artifact.New("g", "a", "1.0")
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a-1.0.jar")
	require.NoError(t, os.WriteFile(src, []byte("jar-bytes"), 0o644))

	listener := &recordingListener{}
	result := installer.Install(context.Background(), deploy.InstallRequest{
		Artifacts: []deploy.ArtifactItem{{Artifact: a, LocalPath: src}},
		Listener:  listener,
	})
	require.Empty(t, result.Exceptions)

	dest := local.PathForLocalArtifact(a)
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(content))
	assert.Contains(t, listener.events, "ARTIFACT_INSTALLING:"+a.String())
	assert.Contains(t, listener.events, "ARTIFACT_INSTALLED:"+a.String())
}

func TestInstallMergesMergeableMetadataInPlace(t *testing.T) {
	lay := layout.NewMaven2()
	local := localrepo.NewSimple(t.TempDir(), lay)
	installer := deploy.NewInstaller(local, nil)

	m := artifact.Metadata{GroupID: "g", ArtifactID: "a", Nature: artifact.ReleaseOrSnapshot}
	existing := local.PathForLocalMetadata(m)
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "maven-metadata.xml")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))

	result := installer.Install(context.Background(), deploy.InstallRequest{
		Metadatas: []deploy.MetadataItem{{Metadata: m, LocalPath: src, Merger: concatMerger{}}},
	})
	require.Empty(t, result.Exceptions)

	content, err := os.ReadFile(local.PathForLocalMetadata(m))
	require.NoError(t, err)
	assert.Equal(t, "oldnew", string(content))
}

func newTestDeployer(t *testing.T, remoteDir string) (*deploy.Deployer, localrepo.Manager) {
	t.Helper()
	lay := layout.NewMaven2()
	local := localrepo.NewSimple(t.TempDir(), lay)
	installer := deploy.NewInstaller(local, nil)
	sess := session.New()

	connectors := func(repo remoterepo.Repository) (*connector.Connector, error) {
		return connector.New(transport.NewFileTransporter(remoteDir), lay), nil
	}

	metadataConnectors := metadata.ConnectorFactory(connectors)
	metadataResolver := metadata.New(local, sess.UpdateChecks, metadataConnectors, nil, sess)

	d := deploy.NewDeployer(installer, nil, connectors, metadataResolver, nil)
	return d, local
}

func TestDeployUploadsArtifactAndInstallsLocally(t *testing.T) {
	remoteDir := t.TempDir()
	d, local := newTestDeployer(t, remoteDir)

	a := artifact.New("g", "a", "1.0")
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a-1.0.jar")
	require.NoError(t, os.WriteFile(src, []byte("jar-bytes"), 0o644))

	listener := &recordingListener{}
	result := d.Deploy(context.Background(), deploy.DeployRequest{
		Repository: remoterepo.Repository{ID: "central"},
		Artifacts:  []deploy.ArtifactItem{{Artifact: a, LocalPath: src}},
		Listener:   listener,
	})
	require.Empty(t, result.Exceptions)

	lay := layout.NewMaven2()
	remotePath := filepath.Join(remoteDir, lay.ArtifactPath(a))
	content, err := os.ReadFile(remotePath)
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(content))

	localContent, err := os.ReadFile(local.PathForLocalArtifact(a))
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(localContent))

	assert.Contains(t, listener.events, "ARTIFACT_DEPLOYING:"+a.String())
	assert.Contains(t, listener.events, "ARTIFACT_DEPLOYED:"+a.String())
}

func TestDeployMergesMetadataAgainstRemoteCopyBeforeUpload(t *testing.T) {
	remoteDir := t.TempDir()
	lay := layout.NewMaven2()
	m := artifact.Metadata{GroupID: "g", ArtifactID: "a", Nature: artifact.ReleaseOrSnapshot}

	remotePath := filepath.Join(remoteDir, lay.MetadataPath(m))
	require.NoError(t, os.MkdirAll(filepath.Dir(remotePath), 0o755))
	require.NoError(t, os.WriteFile(remotePath, []byte("remote"), 0o644))

	d, _ := newTestDeployer(t, remoteDir)

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "maven-metadata.xml")
	require.NoError(t, os.WriteFile(src, []byte("local"), 0o644))

	result := d.Deploy(context.Background(), deploy.DeployRequest{
		Repository: remoterepo.Repository{ID: "central"},
		Metadatas:  []deploy.MetadataItem{{Metadata: m, LocalPath: src, Merger: concatMerger{}}},
	})
	require.Empty(t, result.Exceptions)

	uploaded, err := os.ReadFile(remotePath)
	require.NoError(t, err)
	assert.Equal(t, "remotelocal", string(uploaded), "the uploaded file is the merge of the remote copy with the local one, not the local one alone")
}
