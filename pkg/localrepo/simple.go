package localrepo

import (
	"os"
	"path/filepath"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/layout"
)

// Simple is the single-shared-tree LocalRepositoryManager (spec.md
// §4.E): every artifact, whether installed locally or cached from a
// remote, lives at the same path; no origin tracking is performed, so
// Find always reports availability based on file presence alone.
type Simple struct {
	basedir string
	layout  layout.Layout
}

// NewSimple builds a Simple manager rooted at basedir.
func NewSimple(basedir string, l layout.Layout) *Simple {
	return &Simple{basedir: basedir, layout: l}
}

var _ Manager = (*Simple)(nil)

// Basedir implements Manager.
func (m *Simple) Basedir() string { return m.basedir }

// PathForLocalArtifact implements Manager.
func (m *Simple) PathForLocalArtifact(a artifact.Artifact) string {
	return filepath.Join(m.basedir, filepath.FromSlash(localArtifactPath(m.layout, a)))
}

// PathForRemoteArtifact implements Manager. Simple does not split by
// origin, so repoKey is ignored; the path differs from
// PathForLocalArtifact only in keeping a timestamped snapshot version
// in the file name.
func (m *Simple) PathForRemoteArtifact(a artifact.Artifact, repoKey string) string {
	return filepath.Join(m.basedir, filepath.FromSlash(remoteArtifactPath(m.layout, a)))
}

// PathForLocalMetadata implements Manager.
func (m *Simple) PathForLocalMetadata(md artifact.Metadata) string {
	return filepath.Join(m.basedir, filepath.FromSlash(localMetadataPath(m.layout, md)))
}

// PathForRemoteMetadata implements Manager.
func (m *Simple) PathForRemoteMetadata(md artifact.Metadata, repoKey string) string {
	return filepath.Join(m.basedir, filepath.FromSlash(localMetadataPath(m.layout, md)))
}

// Find implements Manager: availability tracks file presence only,
// since Simple keeps no per-origin index.
func (m *Simple) Find(req FindArtifactRequest) (FindArtifactResult, error) {
	path := m.PathForLocalArtifact(req.Artifact)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FindArtifactResult{File: path}, nil
		}
		return FindArtifactResult{}, Error.Wrap(err)
	}
	return FindArtifactResult{File: path, FileExists: !info.IsDir(), Available: !info.IsDir()}, nil
}

// Add implements Manager as a no-op beyond the file already being in
// place: Simple performs no origin bookkeeping.
func (m *Simple) Add(reg LocalArtifactRegistration) error { return nil }

// AddMetadata implements Manager as a no-op for the same reason.
func (m *Simple) AddMetadata(reg LocalMetadataRegistration) error { return nil }
