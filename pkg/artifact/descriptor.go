package artifact

import "github.com/apache/maven-resolver-sub005/pkg/remoterepo"

// Relocation records a followed artifact relocation: the artifact that
// was declared, and the reason the project supplied for moving.
type Relocation struct {
	Artifact Artifact
	Message  string
}

// Alias is an alternate coordinate set under which the same artifact
// content is also known.
type Alias struct {
	Artifact Artifact
}

// ArtifactDescriptorResult is the sole projection of "effective model"
// consumed by this module (spec.md §1, §3). Effective-POM/model
// computation itself is out of scope; callers supply a reader that
// produces this shape from whatever descriptor format they use.
type ArtifactDescriptorResult struct {
	// Artifact is the (possibly relocated) artifact this descriptor
	// describes.
	Artifact Artifact

	// Relocations records the chain of relocations followed to reach
	// Artifact, oldest first.
	Relocations []Relocation

	Dependencies        []Dependency
	ManagedDependencies []Dependency
	Repositories        []remoterepo.Repository
	Aliases             []Alias
}

// ArtifactDescriptorRequest names the artifact whose descriptor should
// be read, and the repositories to consult while reading it.
type ArtifactDescriptorRequest struct {
	Artifact     Artifact
	Repositories []remoterepo.Repository
}

// ArtifactDescriptorReader is the external collaborator that turns a
// request into a result; the concrete model/POM interpreter lives
// outside this module (spec.md §1).
type ArtifactDescriptorReader interface {
	ReadArtifactDescriptor(req ArtifactDescriptorRequest) (ArtifactDescriptorResult, error)
}
