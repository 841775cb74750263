package conflict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/collect"
	"github.com/apache/maven-resolver-sub005/pkg/conflict"
)

func node(g, a, v string, scope artifact.Scope, children ...*collect.Node) *collect.Node {
	return &collect.Node{
		Dependency: artifact.Dependency{Artifact: artifact.New(g, a, v), Scope: scope},
		Children:   children,
	}
}

func TestTransformNearestWinsPicksClosestPosition(t *testing.T) {
	cDeep := node("g", "c", "1.0", artifact.ScopeCompile)
	a := node("g", "a", "1.0", artifact.ScopeCompile, cDeep)
	cDirect := node("g", "c", "2.0", artifact.ScopeCompile)
	root := node("g", "root", "1.0", "", a, cDirect)

	conflict.Transform(root, conflict.Options{Strategy: conflict.NearestWins})

	require.Len(t, root.Children, 2)
	assert.Empty(t, a.Children, "the deeper position loses and is dropped")
	assert.Equal(t, "2.0", cDirect.Dependency.Artifact.Version)
}

func TestTransformHighestWinsPicksHigherVersion(t *testing.T) {
	cDeep := node("g", "c", "2.0", artifact.ScopeCompile)
	a := node("g", "a", "1.0", artifact.ScopeCompile, cDeep)
	cDirect := node("g", "c", "1.0", artifact.ScopeCompile)
	root := node("g", "root", "1.0", "", a, cDirect)

	conflict.Transform(root, conflict.Options{Strategy: conflict.HighestWins})

	require.Len(t, root.Children, 1, "the direct, lower-versioned position loses and is dropped")
	require.Len(t, a.Children, 1)
	assert.Equal(t, "2.0", a.Children[0].Dependency.Artifact.Version)
}

func TestTransformScopeInheritsFromDirectDependency(t *testing.T) {
	cDeep := node("g", "c", "2.0", artifact.ScopeCompile)
	a := node("g", "a", "1.0", artifact.ScopeCompile, cDeep)
	cDirect := node("g", "c", "1.0", artifact.ScopeTest)
	root := node("g", "root", "1.0", "", a, cDirect)

	conflict.Transform(root, conflict.Options{Strategy: conflict.HighestWins})

	require.Len(t, a.Children, 1)
	assert.Equal(t, artifact.ScopeTest, a.Children[0].Dependency.Scope, "direct dependency's scope overrides the transitively-won node's own scope")
}

func TestTransformVerboseKeepsLoserAsMarker(t *testing.T) {
	cDeep := node("g", "c", "1.0", artifact.ScopeCompile)
	a := node("g", "a", "1.0", artifact.ScopeCompile, cDeep)
	cDirect := node("g", "c", "2.0", artifact.ScopeCompile)
	root := node("g", "root", "1.0", "", a, cDirect)

	conflict.Transform(root, conflict.Options{Strategy: conflict.NearestWins, Verbose: true})

	require.Len(t, a.Children, 1, "the loser is retained as a marker rather than dropped")
	loser := a.Children[0]
	assert.Empty(t, loser.Children)
	require.NotNil(t, loser.ConflictWinner)
	assert.Same(t, cDirect, loser.ConflictWinner)
}

func TestTransformIdempotent(t *testing.T) {
	cDeep := node("g", "c", "1.0", artifact.ScopeCompile)
	a := node("g", "a", "1.0", artifact.ScopeCompile, cDeep)
	cDirect := node("g", "c", "2.0", artifact.ScopeCompile)
	root := node("g", "root", "1.0", "", a, cDirect)

	conflict.Transform(root, conflict.Options{Strategy: conflict.NearestWins, Verbose: true})
	loserBefore := a.Children[0]

	conflict.Transform(root, conflict.Options{Strategy: conflict.NearestWins, Verbose: true})
	require.Len(t, a.Children, 1)
	assert.Same(t, loserBefore, a.Children[0])
	assert.Same(t, cDirect, a.Children[0].ConflictWinner)
	require.Len(t, root.Children, 2)
}
