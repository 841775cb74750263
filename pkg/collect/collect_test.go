package collect_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/collect"
	"github.com/apache/maven-resolver-sub005/pkg/rangeresolve"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/session"
)

// fakeDescriptors answers ReadArtifactDescriptor from a canned map
// keyed by "groupId:artifactId:version", letting tests describe a
// dependency graph without a real repository round-trip. Every
// dependency used by these tests carries a literal version, so
// rangeresolve.Resolver.resolveLiteral never touches its Metadata
// field -- a nil metadata.Resolver is safe to wire in.
type fakeDescriptors struct {
	byKey map[string]artifact.ArtifactDescriptorResult
}

func (f fakeDescriptors) ReadArtifactDescriptor(req artifact.ArtifactDescriptorRequest) (artifact.ArtifactDescriptorResult, error) {
	key := req.Artifact.GroupID + ":" + req.Artifact.ArtifactID + ":" + req.Artifact.Version
	res, ok := f.byKey[key]
	if !ok {
		res = artifact.ArtifactDescriptorResult{}
	}
	if res.Artifact.GroupID == "" {
		// Fixtures describe only their Dependencies; absent a deliberate
		// relocation they report back the artifact they were asked for.
		res.Artifact = req.Artifact
	}
	return res, nil
}

func dep(g, a, v string, scope artifact.Scope) artifact.Dependency {
	return artifact.Dependency{Artifact: artifact.New(g, a, v), Scope: scope}
}

func newTestCollector(descriptors fakeDescriptors) *collect.Collector {
	versions := rangeresolve.New(nil)
	repos := remoterepo.NewManager(nil, nil, nil)
	return collect.New(descriptors, versions, repos, session.New())
}

func TestCollectBuildsTransitiveGraph(t *testing.T) {
	descriptors := fakeDescriptors{byKey: map[string]artifact.ArtifactDescriptorResult{
		"g:root:1.0": {Dependencies: []artifact.Dependency{dep("g", "a", "1.0", artifact.ScopeCompile)}},
		"g:a:1.0":    {Dependencies: []artifact.Dependency{dep("g", "b", "1.0", artifact.ScopeCompile)}},
		"g:b:1.0":    {},
	}}
	c := newTestCollector(descriptors)
	root := artifact.New("g", "root", "1.0")

	result := c.Collect(context.Background(), collect.Request{RootArtifact: &root})
	require.Empty(t, result.Exceptions)
	require.Len(t, result.Root.Children, 1)

	a := result.Root.Children[0]
	assert.Equal(t, "a", a.Dependency.Artifact.ArtifactID)
	require.Len(t, a.Children, 1)
	assert.Equal(t, "b", a.Children[0].Dependency.Artifact.ArtifactID)
	assert.Empty(t, a.Children[0].Children)
}

func TestCollectSkipsOptionalDependencyExpansion(t *testing.T) {
	descriptors := fakeDescriptors{byKey: map[string]artifact.ArtifactDescriptorResult{
		"g:root:1.0": {Dependencies: []artifact.Dependency{
			{Artifact: artifact.New("g", "opt", "1.0"), Scope: artifact.ScopeCompile, Optional: true},
		}},
		"g:opt:1.0": {Dependencies: []artifact.Dependency{dep("g", "never-seen", "1.0", artifact.ScopeCompile)}},
	}}
	c := newTestCollector(descriptors)
	root := artifact.New("g", "root", "1.0")

	result := c.Collect(context.Background(), collect.Request{RootArtifact: &root})
	require.Empty(t, result.Exceptions)
	require.Len(t, result.Root.Children, 1)
	assert.Empty(t, result.Root.Children[0].Children, "optional dependency must be a leaf, not expanded")
}

func TestCollectDefaultSelectorDropsTestScopeBelowRoot(t *testing.T) {
	descriptors := fakeDescriptors{byKey: map[string]artifact.ArtifactDescriptorResult{
		"g:root:1.0": {Dependencies: []artifact.Dependency{dep("g", "a", "1.0", artifact.ScopeTest)}},
	}}
	c := newTestCollector(descriptors)
	root := artifact.New("g", "root", "1.0")

	result := c.Collect(context.Background(), collect.Request{RootArtifact: &root})
	require.Empty(t, result.Exceptions)
	require.Len(t, result.Root.Children, 1, "root's own direct test-scope dependency is kept")

	descriptors.byKey["g:a:1.0"] = artifact.ArtifactDescriptorResult{
		Dependencies: []artifact.Dependency{dep("g", "b", "1.0", artifact.ScopeTest)},
	}
	// A fresh collector, so the session's descriptor pool cannot serve the
	// empty g:a:1.0 descriptor remembered by the first Collect.
	c = newTestCollector(descriptors)
	result = c.Collect(context.Background(), collect.Request{RootArtifact: &root})
	require.Empty(t, result.Exceptions)
	assert.Empty(t, result.Root.Children[0].Children, "a transitive test-scope dependency is rejected by the default selector")
}

func TestCollectAppliesManagedDependencyVersionOverride(t *testing.T) {
	descriptors := fakeDescriptors{byKey: map[string]artifact.ArtifactDescriptorResult{
		"g:root:1.0": {Dependencies: []artifact.Dependency{dep("g", "a", "1.0", artifact.ScopeCompile)}},
		"g:a:2.0":    {},
	}}
	c := newTestCollector(descriptors)
	root := artifact.New("g", "root", "1.0")

	result := c.Collect(context.Background(), collect.Request{
		RootArtifact:        &root,
		ManagedDependencies: []artifact.Dependency{dep("g", "a", "2.0", "")},
	})
	require.Empty(t, result.Exceptions)
	require.Len(t, result.Root.Children, 1)
	assert.Equal(t, "2.0", result.Root.Children[0].Dependency.Artifact.Version)
}

func TestCollectDetectsCycleByArtifactKey(t *testing.T) {
	descriptors := fakeDescriptors{byKey: map[string]artifact.ArtifactDescriptorResult{
		"g:root:1.0": {Dependencies: []artifact.Dependency{dep("g", "a", "1.0", artifact.ScopeCompile)}},
		"g:a:1.0":    {Dependencies: []artifact.Dependency{dep("g", "b", "1.0", artifact.ScopeCompile)}},
		"g:b:1.0":    {Dependencies: []artifact.Dependency{dep("g", "a", "1.0", artifact.ScopeCompile)}},
	}}
	c := newTestCollector(descriptors)
	root := artifact.New("g", "root", "1.0")

	result := c.Collect(context.Background(), collect.Request{RootArtifact: &root})
	require.Empty(t, result.Exceptions)

	a := result.Root.Children[0]
	b := a.Children[0]
	require.Len(t, b.Children, 1)
	cycled := b.Children[0]
	assert.Empty(t, cycled.Children)
	require.NotNil(t, cycled.CycleTo)
	assert.Same(t, a, cycled.CycleTo)
}
