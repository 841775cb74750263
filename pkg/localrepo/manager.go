// Package localrepo implements component E, LocalRepositoryManager: the
// on-disk paths for local/remote artifacts and metadata, and (for the
// Enhanced variant) origin-scoped availability tracking.
//
// Grounded on storj-storj's storage abstraction inferred from
// pkg/overlay/config_test.go (a Config dispatching on a URL scheme to
// pick a storage backend) and on spec.md §4.E/§6 for the exact path
// grammar and side-car format.
package localrepo

import (
	"path/filepath"
	"strings"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/layout"
	"github.com/zeebo/errs"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("localrepo")

// FindArtifactRequest names the artifact to look up and the
// repositories whose availability should be checked in the enhanced
// manager's origin index.
type FindArtifactRequest struct {
	Artifact     artifact.Artifact
	Context      string
	Repositories []string // repository keys
}

// FindArtifactResult is what spec.md §4.E Find returns: the local file
// path (whether or not it exists), whether it is "available" for the
// requested repositories/context, and -- when available -- which
// repository key supplied it.
type FindArtifactResult struct {
	File          string
	FileExists    bool
	Available     bool
	OriginRepoKey string
}

// LocalArtifactRegistration records that an artifact's file at its
// local path originated from the given repository keys, for the given
// contexts.
type LocalArtifactRegistration struct {
	Artifact     artifact.Artifact
	RepoKeys     []string // empty means a purely local (installed) artifact
	Contexts     []string
}

// LocalMetadataRegistration is the metadata analogue of
// LocalArtifactRegistration.
type LocalMetadataRegistration struct {
	Metadata artifact.Metadata
	RepoKey  string
	Contexts []string
}

// Manager is the shared contract implemented by Simple and Enhanced.
//
// Invariant (spec.md §3): PathForLocalArtifact depends only on
// (groupId, artifactId, baseVersion, classifier, extension);
// PathForRemoteArtifact additionally depends on the full version and a
// repository key.
type Manager interface {
	Basedir() string
	PathForLocalArtifact(a artifact.Artifact) string
	PathForRemoteArtifact(a artifact.Artifact, repoKey string) string
	PathForLocalMetadata(m artifact.Metadata) string
	PathForRemoteMetadata(m artifact.Metadata, repoKey string) string

	Find(req FindArtifactRequest) (FindArtifactResult, error)
	Add(reg LocalArtifactRegistration) error
	AddMetadata(reg LocalMetadataRegistration) error
}

// localArtifactPath is shared by Simple and Enhanced: it depends only
// on (groupId, artifactId, baseVersion, classifier, extension), never on
// the full timestamped version.
func localArtifactPath(l layout.Layout, a artifact.Artifact) string {
	local := a.WithVersion(a.BaseVersion())
	return l.ArtifactPath(local)
}

// remoteArtifactPath preserves the full version (including any
// timestamp qualifier), per spec.md §3.
func remoteArtifactPath(l layout.Layout, a artifact.Artifact) string {
	return l.ArtifactPath(a)
}

func localMetadataPath(l layout.Layout, m artifact.Metadata) string {
	return l.MetadataPath(m)
}

func sanitizeRepoKey(key string) string {
	if key == "" {
		return "local"
	}
	return strings.ReplaceAll(key, string(filepath.Separator), "_")
}
