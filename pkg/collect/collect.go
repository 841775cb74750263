// Package collect implements component M, the DependencyCollector: a
// pre-order walk of artifact descriptors that builds the dirty
// dependency graph later transformed by pkg/conflict.
//
// Grounded on golang-dep's solver (_examples/other_examples/f720cacd_
// golang-dep__solver.go.go) for the worklist/memoization shape and on
// thought-machine-please's Maven resolver
// (_examples/other_examples/278ee7ba_thought-machine-please__tools-
// please_maven-resolver.go.go) for the artifact-graph vocabulary this
// module adapts to Go. Session memoization follows pkg/session's
// existing data-pool contract.
package collect

import (
	"context"
	"sort"

	"github.com/zeebo/errs"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/rangeresolve"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/session"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("collect")

// defaultMaxExceptions and defaultMaxCycles bound the diagnostics kept
// per Collect call (spec.md §4.M "excess is silently dropped").
const (
	defaultMaxExceptions  = 100
	defaultMaxCycles      = 100
	defaultMaxRelocations = 16
)

// Node is a DependencyNode: a mutable graph node during collection,
// frozen once Collect returns (spec.md §3 "Lifecycle").
type Node struct {
	Dependency        artifact.Dependency
	Children          []*Node
	Repositories      []remoterepo.Repository
	Relocations       []artifact.Relocation
	Aliases           []artifact.Alias
	VersionConstraint string

	// PremanagedVersion and PremanagedScope record the dependency's
	// pre-management values when verbose management mode is on
	// (spec.md §4.M step 4b); both are empty otherwise.
	PremanagedVersion string
	PremanagedScope   artifact.Scope

	// CycleTo is non-nil when this node terminates a recursion that
	// would otherwise revisit an ancestor by artifact key (spec.md
	// §4.M step 4f); the node itself carries no children.
	CycleTo *Node

	// ConflictWinner is set by pkg/conflict in verbose mode on a node
	// that lost a conflict: it points at the node retained in its
	// place. Only pkg/conflict ever sets this field; collection always
	// leaves it nil (spec.md §4.N "Verbose mode").
	ConflictWinner *Node
}

// Request names the roots to collect from. Either RootArtifact (whose
// descriptor supplies the dependency list) or Dependencies (a bare list
// with no enclosing project) must be set.
type Request struct {
	RootArtifact        *artifact.Artifact
	Dependencies        []artifact.Dependency
	ManagedDependencies []artifact.Dependency
	Repositories        []remoterepo.Repository
	Context             string

	// VerboseManagement enables recording of pre-management
	// version/scope on every managed node (spec.md §4.M step 4b).
	VerboseManagement bool
}

// Result is a CollectResult (spec.md §4.M): the root node of the dirty
// graph plus any non-fatal exceptions accumulated while walking it.
type Result struct {
	Root       *Node
	Exceptions []error
}

// Collector implements component M.
type Collector struct {
	Descriptors artifact.ArtifactDescriptorReader
	Versions    *rangeresolve.Resolver
	Repos       *remoterepo.Manager
	Session     *session.Session

	Selector  Selector
	Manager   Manager
	Traverser Traverser
	Filter    Filter

	MaxExceptions  int
	MaxCycles      int
	MaxRelocations int
}

// New builds a Collector with the classic default selector, manager,
// and traverser (spec.md §4.M "Defaults").
func New(descriptors artifact.ArtifactDescriptorReader, versions *rangeresolve.Resolver, repos *remoterepo.Manager, sess *session.Session) *Collector {
	return &Collector{
		Descriptors:    descriptors,
		Versions:       versions,
		Repos:          repos,
		Session:        sess,
		Selector:       DefaultSelector{},
		Manager:        DefaultManager{},
		Traverser:      DefaultTraverser{},
		MaxExceptions:  defaultMaxExceptions,
		MaxCycles:      defaultMaxCycles,
		MaxRelocations: defaultMaxRelocations,
	}
}

func (c *Collector) maxExceptions() int {
	if c.MaxExceptions > 0 {
		return c.MaxExceptions
	}
	return defaultMaxExceptions
}

func (c *Collector) maxCycles() int {
	if c.MaxCycles > 0 {
		return c.MaxCycles
	}
	return defaultMaxCycles
}

func (c *Collector) maxRelocations() int {
	if c.MaxRelocations > 0 {
		return c.MaxRelocations
	}
	return defaultMaxRelocations
}

func gaKey(a artifact.Artifact) string { return a.GroupID + ":" + a.ArtifactID }

// ancestor is one frame of the recursion stack, used for cycle
// detection by artifact-key equality (spec.md §4.M step 4f).
type ancestor struct {
	key  string
	node *Node
}

// walker threads the per-branch state of one Collect call down the
// recursion; it is not safe for concurrent children, matching the
// sequential pre-order contract of spec.md §4.M.
type walker struct {
	c   *Collector
	ctx context.Context
	req Request

	exceptions []error
	cycles     int
}

// Collect implements spec.md §4.M's contract.
func (c *Collector) Collect(ctx context.Context, req Request) Result {
	w := &walker{c: c, ctx: ctx, req: req}

	root := &Node{Repositories: req.Repositories}
	branch := branchState{
		selector:  orDefault(c.Selector),
		manager:   orDefaultManager(c.Manager),
		traverser: orDefaultTraverser(c.Traverser),
		filter:    c.Filter,
		managed:   managedMap(req.ManagedDependencies),
	}

	if req.RootArtifact != nil {
		root.Dependency = artifact.Dependency{Artifact: *req.RootArtifact}
		w.expand(root, branch, 0, nil)
	} else {
		// A bare dependency list has no single descriptor to read; its
		// children are exactly the declared Dependencies, each expanded
		// as if it were a direct child of an implicit root.
		w.expandChildren(root, req.Dependencies, branch, 0, nil)
	}

	if len(w.exceptions) > c.maxExceptions() {
		w.exceptions = w.exceptions[:c.maxExceptions()]
	}
	return Result{Root: root, Exceptions: w.exceptions}
}

// branchState is the inherited selector/manager/traverser/filter and
// managed-dependency map in effect for one node's own children
// (spec.md §4.M step 3's deriveChild* outputs). depth is tracked
// alongside it as an explicit parameter rather than a field, since its
// value depends on which node's dependency list is being considered,
// not on which branch produced the rules.
type branchState struct {
	selector  Selector
	manager   Manager
	traverser Traverser
	filter    Filter
	managed   map[string]artifact.Dependency
}

// expand implements steps 1-4 for node, recursing into its children.
// depth is node's own distance from the root (the root is depth 0).
// ancestors is the stack of ancestor frames from the root down to (but
// not including) node.
func (w *walker) expand(node *Node, branch branchState, depth int, ancestors []ancestor) {
	desc, err := w.readDescriptor(node.Dependency.Artifact, node.Repositories, w.c.maxRelocations())
	if err != nil {
		w.record(err)
		return
	}

	node.Relocations = desc.Relocations
	node.Aliases = desc.Aliases
	node.Dependency.Artifact = desc.Artifact
	node.Repositories = w.c.Repos.Aggregate(node.Repositories, desc.Repositories, true)

	childCtx := Context{Depth: depth, Dependency: node.Dependency}
	child := branchState{
		selector:  branch.selector.DeriveChildSelector(childCtx),
		manager:   branch.manager.DeriveChildManager(childCtx),
		traverser: branch.traverser.DeriveChildTraverser(childCtx),
		managed:   mergeManaged(branch.managed, desc.ManagedDependencies),
	}
	if branch.filter != nil {
		child.filter = branch.filter.DeriveChildFilter(childCtx)
	}

	ancestors = append(ancestors, ancestor{key: gaKey(node.Dependency.Artifact), node: node})
	// node's own declared dependencies are evaluated at node's depth;
	// only recursion into a child's dependency list advances it.
	w.expandChildren(node, desc.Dependencies, child, depth, ancestors)
}

// expandChildren implements step 4 for node's declared dependency list.
func (w *walker) expandChildren(node *Node, deps []artifact.Dependency, branch branchState, depth int, ancestors []ancestor) {
	for _, dep := range deps {
		declCtx := Context{Depth: depth, Dependency: dep}
		if !branch.selector.SelectDependency(declCtx) {
			continue
		}

		managedDep, premanagedVersion, premanagedScope := w.manage(branch, depth, dep)

		versions, err := w.resolveVersions(managedDep, node.Repositories)
		if err != nil {
			w.record(err)
			continue
		}
		versionCtx := Context{Depth: depth, Dependency: managedDep}
		if branch.filter != nil {
			versions = branch.filter.FilterVersions(versionCtx, versions)
		}
		if len(versions) == 0 {
			w.record(Error.New("no versions available for %s", managedDep.Artifact))
			continue
		}
		sort.Slice(versions, func(i, j int) bool { return versions[i].Version.String() < versions[j].Version.String() })

		descend := branch.traverser.TraverseDependency(Context{Depth: depth, Dependency: managedDep})
		for _, vr := range versions {
			childDep := managedDep
			childDep.Artifact = managedDep.Artifact.WithVersion(vr.Version.String())

			child := &Node{
				Dependency:        childDep,
				Repositories:      node.Repositories,
				VersionConstraint: dep.Artifact.Version,
				PremanagedVersion: premanagedVersion,
				PremanagedScope:   premanagedScope,
			}
			node.Children = append(node.Children, child)

			if existing, ok := findAncestor(ancestors, gaKey(childDep.Artifact)); ok {
				if w.cycles >= w.c.maxCycles() {
					continue
				}
				w.cycles++
				child.CycleTo = existing
				continue
			}
			if !descend {
				continue
			}
			w.expand(child, branch, depth+1, ancestors)
		}
	}
}

// manage applies DependencyManager.manageDependency, returning the
// managed dependency and, when verbose management mode is on and a
// change happened, the pre-management version/scope (spec.md §4.M step
// 4b).
func (w *walker) manage(branch branchState, depth int, dep artifact.Dependency) (artifact.Dependency, string, artifact.Scope) {
	managed, changed := branch.manager.ManageDependency(Context{Depth: depth, Dependency: dep}, branch.managed)
	if !changed || !w.req.VerboseManagement {
		return managed, "", ""
	}
	var premanagedVersion string
	var premanagedScope artifact.Scope
	if managed.Artifact.Version != dep.Artifact.Version {
		premanagedVersion = dep.Artifact.Version
	}
	if managed.Scope != dep.Scope {
		premanagedScope = dep.Scope
	}
	return managed, premanagedVersion, premanagedScope
}

func findAncestor(ancestors []ancestor, key string) (*Node, bool) {
	for _, a := range ancestors {
		if a.key == key {
			return a.node, true
		}
	}
	return nil, false
}

func (w *walker) record(err error) {
	if len(w.exceptions) >= w.c.maxExceptions() {
		return
	}
	w.exceptions = append(w.exceptions, err)
}

// readDescriptor wraps ArtifactDescriptorReader.ReadArtifactDescriptor
// with relocation-chain following and session memoization (spec.md
// §4.M step 1 and §3 "data pool").
func (w *walker) readDescriptor(a artifact.Artifact, repos []remoterepo.Repository, maxRelocations int) (artifact.ArtifactDescriptorResult, error) {
	var relocations []artifact.Relocation
	current := a
	for i := 0; ; i++ {
		if i >= maxRelocations {
			return artifact.ArtifactDescriptorResult{}, Error.New("relocation chain too long starting at %s", a)
		}
		key := fingerprint(current, repos)
		value, err := w.c.Session.DescriptorPool(key, func() (interface{}, error) {
			return w.c.Descriptors.ReadArtifactDescriptor(artifact.ArtifactDescriptorRequest{Artifact: current, Repositories: repos})
		})
		if err != nil {
			return artifact.ArtifactDescriptorResult{}, Error.Wrap(err)
		}
		result := value.(artifact.ArtifactDescriptorResult)
		if result.Artifact.Key() == current.Key() {
			result.Relocations = append(relocations, result.Relocations...)
			return result, nil
		}
		relocations = append(relocations, result.Relocations...)
		current = result.Artifact
	}
}

func (w *walker) resolveVersions(dep artifact.Dependency, repos []remoterepo.Repository) ([]rangeresolve.VersionRepo, error) {
	res := w.c.Versions.Resolve(w.ctx, rangeresolve.Request{Artifact: dep.Artifact, Repositories: repos, Context: w.req.Context})
	w.exceptions = append(w.exceptions, res.Exceptions...)
	if len(res.Versions) == 0 {
		if len(res.Exceptions) > 0 {
			return nil, res.Exceptions[0]
		}
		return nil, nil
	}
	return res.Versions, nil
}

func fingerprint(a artifact.Artifact, repos []remoterepo.Repository) string {
	s := a.Key()
	for _, r := range repos {
		s += "|" + r.ID
	}
	return s
}

func managedMap(deps []artifact.Dependency) map[string]artifact.Dependency {
	m := make(map[string]artifact.Dependency, len(deps))
	for _, d := range deps {
		m[gaKey(d.Artifact)] = d
	}
	return m
}

// mergeManaged layers child under parent without overwriting entries
// the parent already set: management from the nearest ancestor wins
// (spec.md §4.M "Defaults").
func mergeManaged(parent map[string]artifact.Dependency, child []artifact.Dependency) map[string]artifact.Dependency {
	if len(child) == 0 {
		return parent
	}
	merged := make(map[string]artifact.Dependency, len(parent)+len(child))
	for k, v := range parent {
		merged[k] = v
	}
	for _, d := range child {
		key := gaKey(d.Artifact)
		if _, ok := merged[key]; ok {
			continue
		}
		merged[key] = d
	}
	return merged
}

func orDefault(s Selector) Selector {
	if s == nil {
		return DefaultSelector{}
	}
	return s
}

func orDefaultManager(m Manager) Manager {
	if m == nil {
		return DefaultManager{}
	}
	return m
}

func orDefaultTraverser(t Traverser) Traverser {
	if t == nil {
		return DefaultTraverser{}
	}
	return t
}
