package artifact

// Scope is a dependency's classpath scope (compile, runtime, test, ...).
// The set of known scope names is left open; the collector's default
// selector only special-cases "test" and "provided".
type Scope string

// Common scopes recognized by the default collection rules.
const (
	ScopeCompile  Scope = "compile"
	ScopeProvided Scope = "provided"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
)

// Exclusion identifies a (groupId, artifactId) pair to prune from a
// dependency's transitive closure. A field set to "*" acts as a wildcard
// in the usual Maven sense; an empty field is not a wildcard.
type Exclusion struct {
	GroupID    string
	ArtifactID string
}

// Matches reports whether the exclusion covers the given artifact,
// honoring "*" wildcards in either field.
func (e Exclusion) Matches(a Artifact) bool {
	return (e.GroupID == "*" || e.GroupID == a.GroupID) &&
		(e.ArtifactID == "*" || e.ArtifactID == a.ArtifactID)
}

// Dependency pairs an Artifact with the scope/optionality/exclusions
// under which it was declared.
type Dependency struct {
	Artifact   Artifact
	Scope      Scope
	Optional   bool
	Exclusions []Exclusion
}

// Excludes reports whether any of the dependency's exclusions covers a.
func (d Dependency) Excludes(a Artifact) bool {
	for _, ex := range d.Exclusions {
		if ex.Matches(a) {
			return true
		}
	}
	return false
}

// WithScope returns a copy of the dependency with a different scope.
func (d Dependency) WithScope(s Scope) Dependency {
	d.Scope = s
	return d
}

// WithOptional returns a copy of the dependency with a different
// optional flag.
func (d Dependency) WithOptional(opt bool) Dependency {
	d.Optional = opt
	return d
}

// WithExclusions returns a copy of the dependency with exclusions merged
// in (existing exclusions are preserved, duplicates are not removed --
// callers compare by value when that matters).
func (d Dependency) WithExclusions(more []Exclusion) Dependency {
	if len(more) == 0 {
		return d
	}
	merged := make([]Exclusion, 0, len(d.Exclusions)+len(more))
	merged = append(merged, d.Exclusions...)
	merged = append(merged, more...)
	d.Exclusions = merged
	return d
}
