package localrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/layout"
	"github.com/apache/maven-resolver-sub005/pkg/tracking"
)

// SplitConfig controls the optional installed/cached, release/snapshot,
// per-remote directory split (spec.md §4.E): each field, when true,
// adds that axis to the split prefix; PerRemote further splits cached
// artifacts by repository key.
type SplitConfig struct {
	InstalledVsCached bool
	ReleaseVsSnapshot bool
	PerRemote         bool
}

// originFile is the conventional side-car name (spec.md §6).
const originFile = "_remote.repositories"

// Enhanced is the split-capable LocalRepositoryManager (spec.md §4.E):
// same path grammar as Simple, but with an optional prefix split
// between installed/cached, release/snapshot and per-remote-origin
// content, plus an `_remote.repositories` side-car per artifact
// directory recording which remotes supplied which file in which
// contexts.
type Enhanced struct {
	basedir string
	layout  layout.Layout
	split   SplitConfig
	store   tracking.Backend
}

// NewEnhanced builds an Enhanced manager rooted at basedir, tracking
// origins in a plain per-path properties file.
func NewEnhanced(basedir string, l layout.Layout, split SplitConfig) *Enhanced {
	return NewEnhancedWithBackend(basedir, l, split, tracking.NewStore())
}

// NewEnhancedWithBackend builds an Enhanced manager against an
// explicit tracking.Backend, letting a caller opt into the bbolt-backed
// store for large local repositories (pkg/config "TrackingBackend").
func NewEnhancedWithBackend(basedir string, l layout.Layout, split SplitConfig, store tracking.Backend) *Enhanced {
	return &Enhanced{basedir: basedir, layout: l, split: split, store: store}
}

var _ Manager = (*Enhanced)(nil)

// Basedir implements Manager.
func (m *Enhanced) Basedir() string { return m.basedir }

// splitPrefix assembles the configured pieces for (installed|cached)/
// (releases|snapshots)/(repoKey), per spec.md §4.E's path template:
//
//	{basedir}/{splitPrefix}/{groupPath}/{artifactId}/{baseVersion}/{filename}
func (m *Enhanced) splitPrefix(cached bool, snapshot bool, repoKey string) string {
	var parts []string
	if m.split.InstalledVsCached {
		if cached {
			parts = append(parts, "cached")
		} else {
			parts = append(parts, "installed")
		}
	}
	if m.split.ReleaseVsSnapshot {
		if snapshot {
			parts = append(parts, "snapshots")
		} else {
			parts = append(parts, "releases")
		}
	}
	if m.split.PerRemote && cached && repoKey != "" {
		parts = append(parts, sanitizeRepoKey(repoKey))
	}
	return strings.Join(parts, "/")
}

func (m *Enhanced) join(prefix, rel string) string {
	if prefix == "" {
		return filepath.Join(m.basedir, filepath.FromSlash(rel))
	}
	return filepath.Join(m.basedir, filepath.FromSlash(prefix), filepath.FromSlash(rel))
}

// PathForLocalArtifact implements Manager: depends only on
// (groupId, artifactId, baseVersion, classifier, extension) -- it is
// always addressed as "installed", never split by remote.
func (m *Enhanced) PathForLocalArtifact(a artifact.Artifact) string {
	prefix := m.splitPrefix(false, a.IsSnapshot(), "")
	return m.join(prefix, localArtifactPath(m.layout, a))
}

// PathForRemoteArtifact implements Manager: additionally depends on the
// full version (preserving timestamps) and repoKey.
func (m *Enhanced) PathForRemoteArtifact(a artifact.Artifact, repoKey string) string {
	prefix := m.splitPrefix(true, a.IsSnapshot(), repoKey)
	return m.join(prefix, remoteArtifactPath(m.layout, a))
}

// PathForLocalMetadata implements Manager.
func (m *Enhanced) PathForLocalMetadata(md artifact.Metadata) string {
	prefix := m.splitPrefix(false, md.Nature == artifact.Snapshot, "")
	return m.join(prefix, localMetadataPath(m.layout, md))
}

// PathForRemoteMetadata implements Manager.
func (m *Enhanced) PathForRemoteMetadata(md artifact.Metadata, repoKey string) string {
	prefix := m.splitPrefix(true, md.Nature == artifact.Snapshot, repoKey)
	return m.join(prefix, localMetadataPath(m.layout, md))
}

func (m *Enhanced) originPath(fileDir string) string {
	return filepath.Join(fileDir, originFile)
}

// entryKey builds the `filename>[repoKey]` key whose value is
// `[context1,context2,...]`.
func entryKey(filename, repoKey string) string {
	return fmt.Sprintf("%s>[%s]", filename, repoKey)
}

func splitContexts(v string) []string {
	v = strings.TrimPrefix(v, "[")
	v = strings.TrimSuffix(v, "]")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	sort.Strings(parts)
	return parts
}

func joinContexts(ctxs []string) string {
	sort.Strings(ctxs)
	return "[" + strings.Join(ctxs, ",") + "]"
}

// Find implements Manager per spec.md §4.E: available=true iff the file
// exists on disk AND (the request asked for no repositories and the
// file is recorded under the empty repo key, OR at least one requested
// repository's key appears in the side-car under the requested
// context).
func (m *Enhanced) Find(req FindArtifactRequest) (FindArtifactResult, error) {
	local := m.PathForLocalArtifact(req.Artifact)
	info, err := os.Stat(local)
	if err != nil && !os.IsNotExist(err) {
		return FindArtifactResult{}, Error.Wrap(err)
	}
	exists := err == nil && !info.IsDir()
	if !exists {
		return FindArtifactResult{File: local}, nil
	}

	props, rerr := m.store.Read(m.originPath(filepath.Dir(local)))
	if rerr != nil {
		return FindArtifactResult{}, rerr
	}
	filename := filepath.Base(local)

	if len(req.Repositories) == 0 {
		if ctxVal, ok := props[entryKey(filename, "")]; ok {
			if contextMatches(ctxVal, req.Context) {
				return FindArtifactResult{File: local, FileExists: true, Available: true}, nil
			}
		}
		return FindArtifactResult{File: local, FileExists: true}, nil
	}

	for _, repoKey := range req.Repositories {
		if ctxVal, ok := props[entryKey(filename, repoKey)]; ok {
			if contextMatches(ctxVal, req.Context) {
				return FindArtifactResult{File: local, FileExists: true, Available: true, OriginRepoKey: repoKey}, nil
			}
		}
	}
	return FindArtifactResult{File: local, FileExists: true}, nil
}

func contextMatches(recorded, requested string) bool {
	if requested == "" {
		return true
	}
	for _, c := range splitContexts(recorded) {
		if c == requested {
			return true
		}
	}
	return false
}

// Add implements Manager: it appends (repoKey, contexts) entries to the
// artifact's `_remote.repositories` side-car atomically.
func (m *Enhanced) Add(reg LocalArtifactRegistration) error {
	local := m.PathForLocalArtifact(reg.Artifact)
	origin := m.originPath(filepath.Dir(local))
	filename := filepath.Base(local)

	repoKeys := reg.RepoKeys
	if len(repoKeys) == 0 {
		repoKeys = []string{""}
	}
	return m.store.Update(origin, func(props tracking.Properties) tracking.Properties {
		for _, repoKey := range repoKeys {
			key := entryKey(filename, repoKey)
			existing := splitContexts(props[key])
			merged := mergeContexts(existing, reg.Contexts)
			props[key] = joinContexts(merged)
		}
		return props
	})
}

// AddMetadata implements Manager like Add, for a metadata file.
func (m *Enhanced) AddMetadata(reg LocalMetadataRegistration) error {
	local := m.PathForLocalMetadata(reg.Metadata)
	origin := m.originPath(filepath.Dir(local))
	filename := filepath.Base(local)

	return m.store.Update(origin, func(props tracking.Properties) tracking.Properties {
		key := entryKey(filename, reg.RepoKey)
		existing := splitContexts(props[key])
		merged := mergeContexts(existing, reg.Contexts)
		props[key] = joinContexts(merged)
		return props
	})
}

func mergeContexts(existing, more []string) []string {
	seen := make(map[string]bool, len(existing)+len(more))
	out := make([]string, 0, len(existing)+len(more))
	for _, c := range append(append([]string{}, existing...), more...) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
