// Package layout implements component B, RepositoryLayout: mapping an
// Artifact or Metadata to a relative URI path, and enumerating the
// checksum side-files for a given path.
//
// Grounded on spec.md §6 "Repository layout (Maven-2 default)" and on
// the teacher's habit of a small interface plus one concrete
// implementation (pkg/overlay.Config pattern in storj-storj).
package layout

import (
	"strings"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
)

// Checksum names one checksum side-file: its algorithm and the relative
// path suffix appended to the primary file's path.
type Checksum struct {
	Algorithm string
	Extension string // e.g. ".sha1", ".md5"
}

// Layout maps artifacts and metadata to relative paths within a
// repository, and enumerates the checksum side-files for any path.
type Layout interface {
	ArtifactPath(a artifact.Artifact) string
	MetadataPath(m artifact.Metadata) string
	Checksums(path string) []Checksum
}

// Maven2 is the conventional default layout (spec.md §6):
//
//	artifacts:      groupId_with_slashes/artifactId/baseVersion/artifactId-version[-classifier].ext
//	root metadata:  filename
//	group metadata: groupPath/filename
//	artifact meta:  groupPath/artifactId/filename
//	version meta:   groupPath/artifactId/baseVersion/filename
type Maven2 struct {
	// Algorithms is the ordered list of checksum algorithms this layout
	// advertises; order reflects configuration (spec.md §6).
	Algorithms []Checksum
}

// NewMaven2 returns a Maven2 layout with the conventional SHA-1 and MD5
// checksum side-files, in that order.
func NewMaven2() Maven2 {
	return Maven2{Algorithms: []Checksum{
		{Algorithm: "SHA-1", Extension: ".sha1"},
		{Algorithm: "MD5", Extension: ".md5"},
	}}
}

func groupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", "/")
}

// ArtifactPath implements Layout.
func (l Maven2) ArtifactPath(a artifact.Artifact) string {
	return strings.Join([]string{
		groupPath(a.GroupID),
		a.ArtifactID,
		a.BaseVersion(),
		a.Filename(),
	}, "/")
}

// MetadataPath implements Layout.
func (l Maven2) MetadataPath(m artifact.Metadata) string {
	name := m.Type
	if name == "" {
		name = "maven-metadata.xml"
	}
	switch m.Level() {
	case "GAV":
		return strings.Join([]string{groupPath(m.GroupID), m.ArtifactID, m.Version, name}, "/")
	case "GA":
		return strings.Join([]string{groupPath(m.GroupID), m.ArtifactID, name}, "/")
	case "G":
		if m.GroupID == "" {
			return name
		}
		return strings.Join([]string{groupPath(m.GroupID), name}, "/")
	default:
		return name
	}
}

// Checksums implements Layout: it returns a copy of the configured
// checksum descriptors, in configured order, whatever the path;
// ChecksumPath builds each side-car path from one of them.
func (l Maven2) Checksums(path string) []Checksum {
	out := make([]Checksum, len(l.Algorithms))
	copy(out, l.Algorithms)
	return out
}

// ChecksumPath returns the sibling checksum file path for the given
// checksum descriptor.
func ChecksumPath(path string, c Checksum) string {
	return path + c.Extension
}
