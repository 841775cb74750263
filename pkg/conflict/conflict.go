// Package conflict implements component N, the ConflictResolver: a
// graph transformer that prunes the dirty graph pkg/collect builds down
// to one winning node per conflict id.
//
// Grounded on thought-machine-please's Maven resolver mediation step
// (_examples/other_examples/278ee7ba_thought-machine-please__tools-
// please_maven-resolver.go.go, Resolver.mediate/updateDeps) for the
// hard-version-intersection idea generalized here into nearest/highest
// strategies, per spec.md §4.N.
package conflict

import (
	"github.com/zeebo/errs"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/collect"
	"github.com/apache/maven-resolver-sub005/pkg/version"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("conflict")

// Strategy selects which conflicting position wins.
type Strategy int

const (
	// NearestWins retains the position closest to the root, declaration
	// order breaking ties (spec.md §4.N).
	NearestWins Strategy = iota
	// HighestWins retains the position with the highest version by
	// VersionScheme order.
	HighestWins
)

// Options configures one Transform call.
type Options struct {
	Strategy Strategy
	// Verbose keeps loser nodes as leaf conflict markers instead of
	// dropping them (spec.md §4.N "Verbose mode").
	Verbose bool
}

// scopeRank orders scopes from widest to narrowest for the "no direct
// position" scope-merge fallback; scopes absent from the map (including
// the empty scope) look up as 0 and so rank with compile.
var scopeRank = map[artifact.Scope]int{
	artifact.ScopeCompile:  0,
	artifact.ScopeRuntime:  1,
	artifact.ScopeProvided: 2,
	artifact.ScopeSystem:   3,
	artifact.ScopeTest:     4,
}

// position is one appearance of a dependency somewhere in the dirty
// graph: its node, the node whose Children slice holds it, its
// distance from the root, and its pre-order rank (declaration order).
type position struct {
	node   *collect.Node
	parent *collect.Node
	depth  int
	order  int
}

// Transform implements spec.md §4.N's contract: it mutates root's
// children in place and returns root. Calling Transform again on an
// already-transformed graph is a no-op (idempotence -- positions marked
// as conflict losers in a prior verbose-mode pass are excluded from
// regrouping).
func Transform(root *collect.Node, opts Options) *collect.Node {
	var positions []position
	order := 0
	gather(root, 0, &order, &positions)

	groups := make(map[string][]position)
	for _, p := range positions {
		key := p.node.Dependency.Artifact.ConflictKey()
		groups[key] = append(groups[key], p)
	}

	winners := make(map[*collect.Node]*collect.Node, len(positions))
	for _, group := range groups {
		winner := pickWinner(group, opts.Strategy)
		applyEffectiveScope(winner, group)
		for _, p := range group {
			winners[p.node] = winner
		}
	}

	prune(root, winners, opts.Verbose)
	return root
}

// gather walks the dirty graph pre-order, recording every position
// except ones already marked as a conflict loser by a prior Transform
// call (spec.md §4.N idempotence) and stopping at cycle markers, which
// carry no children to descend into.
func gather(node *collect.Node, depth int, order *int, out *[]position) {
	for _, c := range node.Children {
		if c.ConflictWinner != nil {
			continue
		}
		*out = append(*out, position{node: c, parent: node, depth: depth + 1, order: *order})
		*order++
		if c.CycleTo == nil {
			gather(c, depth+1, order, out)
		}
	}
}

// pickWinner implements the nearest/highest strategies of spec.md
// §4.N, tie-breaking on declaration order.
func pickWinner(group []position, strategy Strategy) *collect.Node {
	best := group[0]
	for _, p := range group[1:] {
		if better(p, best, strategy) {
			best = p
		}
	}
	return best.node
}

func better(a, b position, strategy Strategy) bool {
	if strategy == HighestWins {
		av, aerr := version.Default.ParseVersion(a.node.Dependency.Artifact.Version)
		bv, berr := version.Default.ParseVersion(b.node.Dependency.Artifact.Version)
		switch {
		case aerr == nil && berr != nil:
			return true
		case aerr != nil && berr == nil:
			return false
		case aerr == nil && berr == nil:
			if c := version.Compare(av, bv); c != 0 {
				return c > 0
			}
		}
	}
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	return a.order < b.order
}

// applyEffectiveScope implements spec.md §4.N "Scope and optional flags
// of the winning node are computed by merging across all conflicting
// positions; a direct dependency overrides transitive choices."
func applyEffectiveScope(winner *collect.Node, group []position) {
	for _, p := range group {
		if p.depth == 1 {
			winner.Dependency.Scope = p.node.Dependency.Scope
			winner.Dependency.Optional = p.node.Dependency.Optional
			return
		}
	}
	optional := true
	widest := group[0].node.Dependency.Scope
	for _, p := range group {
		if !p.node.Dependency.Optional {
			optional = false
		}
		if scopeRank[p.node.Dependency.Scope] < scopeRank[widest] {
			widest = p.node.Dependency.Scope
		}
	}
	winner.Dependency.Scope = widest
	winner.Dependency.Optional = optional
}

// prune rewrites node.Children to keep only winning positions,
// dropping losers (or, in verbose mode, keeping them as childless
// conflict markers pointing at the winner) -- spec.md §4.N "Verbose
// mode".
func prune(node *collect.Node, winners map[*collect.Node]*collect.Node, verbose bool) {
	kept := node.Children[:0:0]
	for _, c := range node.Children {
		winner, ok := winners[c]
		if !ok {
			// Not gathered this pass: an already-settled marker from a
			// prior Transform call. Leave it untouched.
			kept = append(kept, c)
			continue
		}
		if winner == c {
			prune(c, winners, verbose)
			kept = append(kept, c)
			continue
		}
		if verbose {
			c.ConflictWinner = winner
			c.Children = nil
			kept = append(kept, c)
		}
	}
	node.Children = kept
}
