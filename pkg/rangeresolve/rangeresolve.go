package rangeresolve

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/zeebo/errs"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/metadata"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/version"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("rangeresolve")

// VersionRepo pairs a concrete, surviving version with the repository
// whose metadata first advertised it (spec.md §4.L step 4); Repository
// is the zero value when the version came only from the local
// repository.
type VersionRepo struct {
	Version    version.Version
	Repository remoterepo.Repository
}

// Request names the artifact whose Version field is a literal or a
// constraint, and the repositories to consult in declaration order.
type Request struct {
	Artifact     artifact.Artifact
	Repositories []remoterepo.Repository
	Context      string
}

// Result is a VersionRangeResult (spec.md §4.L): every surviving
// version in ascending order, each paired with its authoritative
// repository.
type Result struct {
	Versions   []VersionRepo
	Exceptions []error
}

// Resolver implements component L.
type Resolver struct {
	Scheme   version.Scheme
	Metadata *metadata.Resolver
}

// New builds a Resolver backed by the given MetadataResolver.
func New(metadataResolver *metadata.Resolver) *Resolver {
	return &Resolver{Scheme: version.Default, Metadata: metadataResolver}
}

// Resolve implements spec.md §4.L's algorithm.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	constraint, err := r.Scheme.ParseVersionConstraint(req.Artifact.Version)
	if err != nil {
		return Result{Exceptions: []error{err}}
	}

	if !constraint.IsRange() {
		return r.resolveLiteral(*constraint.Literal, req)
	}
	return r.resolveRange(ctx, *constraint.Range, req)
}

// resolveLiteral accepts the version as-is; authority is the first
// declared repository if any, otherwise the zero Repository (LOCAL),
// matching spec.md §4.L step 2 without a metadata round-trip (a literal
// version's file existence, not its metadata listing, is what
// ArtifactResolver actually checks).
func (r *Resolver) resolveLiteral(v version.Version, req Request) Result {
	var repo remoterepo.Repository
	if len(req.Repositories) > 0 {
		repo = req.Repositories[0]
	}
	return Result{Versions: []VersionRepo{{Version: v, Repository: repo}}}
}

// resolveRange implements steps 3-5: union group/artifact metadata
// across repositories, filter by range, sort ascending, then substitute
// the canonical timestamped version for any surviving snapshot.
func (r *Resolver) resolveRange(ctx context.Context, rng version.Range, req Request) Result {
	type seen struct {
		version.Version
		repo remoterepo.Repository
	}
	byRaw := make(map[string]seen)
	var result Result

	gaMetadata := artifact.Metadata{GroupID: req.Artifact.GroupID, ArtifactID: req.Artifact.ArtifactID, Nature: artifact.ReleaseOrSnapshot}
	for _, repo := range req.Repositories {
		res := r.Metadata.Resolve(ctx, metadata.Request{
			Metadata:     gaMetadata,
			Context:      req.Context,
			Repositories: []remoterepo.Repository{repo},
		})
		result.Exceptions = append(result.Exceptions, res.Exceptions...)
		if !res.FileExists {
			continue
		}
		data, err := os.ReadFile(res.File)
		if err != nil {
			result.Exceptions = append(result.Exceptions, Error.Wrap(err))
			continue
		}
		raws, err := parseVersions(data)
		if err != nil {
			result.Exceptions = append(result.Exceptions, err)
			continue
		}
		for _, raw := range raws {
			if _, already := byRaw[raw]; already {
				continue // first repository in declaration order stays authoritative
			}
			v, err := r.Scheme.ParseVersion(raw)
			if err != nil {
				continue
			}
			if !rng.Contains(v) {
				continue
			}
			byRaw[raw] = seen{Version: v, repo: repo}
		}
	}

	for _, s := range byRaw {
		result.Versions = append(result.Versions, VersionRepo{Version: s.Version, Repository: s.repo})
	}
	sort.Slice(result.Versions, func(i, j int) bool {
		return version.Less(result.Versions[i].Version, result.Versions[j].Version)
	})

	for i, vr := range result.Versions {
		if !strings.HasSuffix(vr.Version.String(), "-SNAPSHOT") {
			continue
		}
		result.Versions[i] = r.substituteSnapshotTimestamp(ctx, req, vr)
	}

	return result
}

// substituteSnapshotTimestamp implements step 5: if the authoritative
// repository's GAV-level metadata advertises a timestamp/buildNumber,
// rewrite the version to the canonical deployed form.
func (r *Resolver) substituteSnapshotTimestamp(ctx context.Context, req Request, vr VersionRepo) VersionRepo {
	gavMetadata := artifact.Metadata{
		GroupID:    req.Artifact.GroupID,
		ArtifactID: req.Artifact.ArtifactID,
		Version:    vr.Version.String(),
		Nature:     artifact.Snapshot,
	}
	res := r.Metadata.Resolve(ctx, metadata.Request{
		Metadata:     gavMetadata,
		Context:      req.Context,
		Repositories: []remoterepo.Repository{vr.Repository},
	})
	if !res.FileExists {
		return vr
	}
	data, err := os.ReadFile(res.File)
	if err != nil {
		return vr
	}
	timestamp, buildNumber, err := parseSnapshotTimestamp(data)
	if err != nil || timestamp == "" || buildNumber == "" {
		return vr
	}
	base := strings.TrimSuffix(vr.Version.String(), "-SNAPSHOT")
	timestamped, err := r.Scheme.ParseVersion(base + "-" + timestamp + "-" + buildNumber)
	if err != nil {
		return vr
	}
	vr.Version = timestamped
	return vr
}
