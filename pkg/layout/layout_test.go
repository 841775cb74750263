package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/layout"
)

func TestEnhancedLRMPathScenario(t *testing.T) {
	// spec.md §8 scenario 6, remote half: the layout keeps the timestamped
	// file name; the local half is checked in pkg/localrepo.
	l := layout.NewMaven2()
	a := artifact.Artifact{GroupID: "g.i.d", ArtifactID: "a.i.d", Extension: "jar", Version: "1.0-20110329.221805-4"}
	assert.Equal(t, "g/i/d/a.i.d/1.0-SNAPSHOT/a.i.d-1.0-20110329.221805-4.jar", l.ArtifactPath(a))
}

func TestRemotePathPreservesTimestamp(t *testing.T) {
	l := layout.NewMaven2()
	a := artifact.Artifact{GroupID: "g.i.d", ArtifactID: "a.i.d", Extension: "jar", Version: "1.0-20110329.221805-4"}
	path := a.ArtifactID + "-" + a.Version + ".jar"
	_ = path
	assert.Equal(t, "g/i/d/a.i.d/1.0-SNAPSHOT/a.i.d-1.0-20110329.221805-4.jar", l.ArtifactPath(a))
}

func TestMetadataLevels(t *testing.T) {
	l := layout.NewMaven2()
	assert.Equal(t, "maven-metadata.xml", l.MetadataPath(artifact.Metadata{}))
	assert.Equal(t, "com/example/maven-metadata.xml", l.MetadataPath(artifact.Metadata{GroupID: "com.example"}))
	assert.Equal(t, "com/example/lib/maven-metadata.xml", l.MetadataPath(artifact.Metadata{GroupID: "com.example", ArtifactID: "lib"}))
	assert.Equal(t, "com/example/lib/1.0/maven-metadata.xml", l.MetadataPath(artifact.Metadata{GroupID: "com.example", ArtifactID: "lib", Version: "1.0"}))
}

func TestChecksumsOrder(t *testing.T) {
	l := layout.NewMaven2()
	sums := l.Checksums("a/b.jar")
	assert.Equal(t, []layout.Checksum{{Algorithm: "SHA-1", Extension: ".sha1"}, {Algorithm: "MD5", Extension: ".md5"}}, sums)
	assert.Equal(t, "a/b.jar.sha1", layout.ChecksumPath("a/b.jar", sums[0]))
}
