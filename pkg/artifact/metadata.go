package artifact

// Nature describes which kind of versions a Metadata document indexes.
type Nature int

const (
	// Release restricts the metadata to release versions.
	Release Nature = iota
	// Snapshot restricts the metadata to snapshot versions.
	Snapshot
	// ReleaseOrSnapshot places no restriction on version kind.
	ReleaseOrSnapshot
)

func (n Nature) String() string {
	switch n {
	case Release:
		return "release"
	case Snapshot:
		return "snapshot"
	default:
		return "release-or-snapshot"
	}
}

// Metadata is an immutable repository-side index file. It exists at
// group (GroupID only), group-artifact (GroupID+ArtifactID) or
// group-artifact-version granularity depending on which coordinate
// fields are populated.
type Metadata struct {
	GroupID    string
	ArtifactID string
	Version    string
	Type       string
	Nature     Nature

	// File is the local path backing this metadata, if resolved.
	File string
}

// Level reports the granularity of this metadata: "G", "GA" or "GAV".
func (m Metadata) Level() string {
	switch {
	case m.Version != "":
		return "GAV"
	case m.ArtifactID != "":
		return "GA"
	default:
		return "G"
	}
}

// Key identifies this metadata document for caching and tracking
// purposes.
func (m Metadata) Key() string {
	return m.GroupID + ":" + m.ArtifactID + ":" + m.Version + ":" + m.Type
}

// WithFile returns a copy of the metadata with the local file path set.
func (m Metadata) WithFile(path string) Metadata {
	m.File = path
	return m
}

func (m Metadata) String() string { return m.Key() }
