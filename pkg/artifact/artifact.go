// Package artifact holds the immutable coordinate and descriptor types
// shared by every other package in this module: Artifact, Metadata,
// Dependency and the ArtifactDescriptorResult projection.
package artifact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zeebo/errs"
)

// Error is the namespaced error class for the artifact package.
var Error = errs.Class("artifact")

// snapshotTimestamp matches the timestamped-snapshot qualifier Maven-2
// reserves for deployed snapshots, e.g. "20110329.221805-4".
var snapshotTimestamp = regexp.MustCompile(`^(.*)-(\d{8}\.\d{6}-\d+)$`)

// Artifact is an immutable value identified by its four coordinate
// fields plus version. See spec.md §3.
type Artifact struct {
	GroupID    string
	ArtifactID string
	Classifier string
	Extension  string
	Version    string

	// Properties carries side metadata (e.g. "includesDependencies")
	// that does not participate in identity.
	Properties map[string]string

	// File is the local path backing this artifact, if resolved.
	File string
}

// New builds an Artifact with an empty classifier and "jar" extension,
// the Maven defaults.
func New(groupID, artifactID, version string) Artifact {
	return Artifact{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Extension:  "jar",
		Version:    version,
	}
}

// BaseVersion collapses a timestamped snapshot qualifier back to
// "-SNAPSHOT", e.g. "1.0-20110329.221805-4" -> "1.0-SNAPSHOT".
func (a Artifact) BaseVersion() string {
	if m := snapshotTimestamp.FindStringSubmatch(a.Version); m != nil {
		return m[1] + "-SNAPSHOT"
	}
	return a.Version
}

// IsSnapshot reports whether the artifact's version denotes a snapshot,
// either the literal "-SNAPSHOT" suffix or a timestamped qualifier.
func (a Artifact) IsSnapshot() bool {
	return strings.HasSuffix(a.Version, "-SNAPSHOT") || snapshotTimestamp.MatchString(a.Version)
}

// Key returns the identity tuple used for conflict ids and caches:
// (groupId, artifactId, extension, classifier, version).
func (a Artifact) Key() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", a.GroupID, a.ArtifactID, a.Extension, a.Classifier, a.Version)
}

// ConflictKey returns the identity used by ConflictResolver to group
// competing nodes: (groupId, artifactId, extension, classifier) without
// version.
func (a Artifact) ConflictKey() string {
	return fmt.Sprintf("%s:%s:%s:%s", a.GroupID, a.ArtifactID, a.Extension, a.Classifier)
}

// WithVersion returns a copy of the artifact with a new version.
func (a Artifact) WithVersion(version string) Artifact {
	a.Version = version
	return a
}

// WithFile returns a copy of the artifact with the local file path set.
func (a Artifact) WithFile(path string) Artifact {
	a.File = path
	return a
}

// Filename is the conventional "artifactId-version[-classifier].ext"
// file name for this artifact.
func (a Artifact) Filename() string {
	name := a.ArtifactID + "-" + a.Version
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	if a.Extension != "" {
		name += "." + a.Extension
	}
	return name
}

func (a Artifact) String() string {
	return a.Key()
}
