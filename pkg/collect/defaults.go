package collect

import (
	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/rangeresolve"
)

// Context carries the position-dependent state passed to
// Selector/Manager/Traverser/Filter when deciding one edge (spec.md
// §4.M steps 3-4).
type Context struct {
	// Depth is the distance from the root to the node whose children
	// are being decided; the root itself is depth 0.
	Depth      int
	Dependency artifact.Dependency
}

// Selector decides whether a declared dependency is followed at all
// (spec.md §4.M step 4a).
type Selector interface {
	SelectDependency(ctx Context) bool
	DeriveChildSelector(ctx Context) Selector
}

// Manager merges a dependency against the managed-dependency set in
// effect at ctx, reporting whether anything changed (spec.md §4.M step
// 4b). managed is keyed by "groupId:artifactId".
type Manager interface {
	ManageDependency(ctx Context, managed map[string]artifact.Dependency) (artifact.Dependency, bool)
	DeriveChildManager(ctx Context) Manager
}

// Traverser decides whether a dependency's own descriptor is read and
// its transitive closure expanded, or whether it is added as an
// unexpanded leaf (spec.md §4.M step 4e).
type Traverser interface {
	TraverseDependency(ctx Context) bool
	DeriveChildTraverser(ctx Context) Traverser
}

// Filter prunes the version list a VersionRangeResolver returned for a
// dependency before child edges are created from it (spec.md §4.M step
// 4d).
type Filter interface {
	FilterVersions(ctx Context, versions []rangeresolve.VersionRepo) []rangeresolve.VersionRepo
	DeriveChildFilter(ctx Context) Filter
}

// DefaultSelector rejects the "test" and "provided" scopes at any depth
// past the root's own direct dependencies (spec.md §4.M "Defaults").
type DefaultSelector struct{}

func (DefaultSelector) SelectDependency(ctx Context) bool {
	if ctx.Depth == 0 {
		return true
	}
	switch ctx.Dependency.Scope {
	case artifact.ScopeTest, artifact.ScopeProvided:
		return false
	}
	return true
}

func (s DefaultSelector) DeriveChildSelector(Context) Selector { return s }

// DefaultManager applies "classic" management: a managed entry
// overrides the dependency's version and scope (when set), applies the
// managed entry's exclusions (when any), leaves optionality alone, and
// only ever consults the map it
// was derived with -- nearer ancestors already won during the merge in
// mergeManaged.
type DefaultManager struct{}

func (DefaultManager) ManageDependency(ctx Context, managed map[string]artifact.Dependency) (artifact.Dependency, bool) {
	dep := ctx.Dependency
	m, ok := managed[dep.Artifact.GroupID+":"+dep.Artifact.ArtifactID]
	if !ok {
		return dep, false
	}
	changed := false
	if m.Artifact.Version != "" && m.Artifact.Version != dep.Artifact.Version {
		dep.Artifact = dep.Artifact.WithVersion(m.Artifact.Version)
		changed = true
	}
	if m.Scope != "" && m.Scope != dep.Scope {
		dep.Scope = m.Scope
		changed = true
	}
	if len(m.Exclusions) > 0 {
		dep = dep.WithExclusions(m.Exclusions)
		changed = true
	}
	return dep, changed
}

func (m DefaultManager) DeriveChildManager(Context) Manager { return m }

// DefaultTraverser descends into every dependency except optional ones
// (spec.md §4.M "Defaults").
type DefaultTraverser struct{}

func (DefaultTraverser) TraverseDependency(ctx Context) bool { return !ctx.Dependency.Optional }

func (t DefaultTraverser) DeriveChildTraverser(Context) Traverser { return t }
