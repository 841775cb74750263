// Package resolve implements component K, ArtifactResolver: the
// version-resolve / workspace / local / per-repository state machine
// that turns an ArtifactRequest into a file on disk.
//
// Grounded on spec.md §4.K for the state machine and on storj-storj's
// overlay.Config.Run dispatch-across-candidates shape (shared with
// pkg/metadata) for the per-repository trial loop.
package resolve

import (
	"context"

	"github.com/zeebo/errs"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/checksum"
	"github.com/apache/maven-resolver-sub005/pkg/connector"
	"github.com/apache/maven-resolver-sub005/pkg/localrepo"
	"github.com/apache/maven-resolver-sub005/pkg/rangeresolve"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/session"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
	"github.com/apache/maven-resolver-sub005/pkg/updatecheck"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("resolve")

// NotFoundError is the exception surfaced when every candidate source
// is exhausted (spec.md §4.K, §7 "ArtifactNotFoundException").
var NotFoundError = errs.Class("artifact not found")

// ConnectorFactory builds (or reuses) a Connector for the given
// repository.
type ConnectorFactory func(repo remoterepo.Repository) (*connector.Connector, error)

// Listener receives the two events spec.md §4.K guarantees per
// artifact: Resolving before any work begins, Resolved (with any
// exception) when the state machine settles.
type Listener interface {
	ArtifactResolving(a artifact.Artifact)
	ArtifactResolved(a artifact.Artifact, err error)
}

// Request names the artifact to resolve and the candidate repositories,
// already ordered and mirror/auth/proxy-applied by the caller's
// RemoteRepositoryManager.
type Request struct {
	Artifact     artifact.Artifact
	Repositories []remoterepo.Repository
	Context      string
	Listener     Listener
}

// Result is what Resolve returns.
type Result struct {
	Artifact   artifact.Artifact
	Repository remoterepo.Repository
	Exceptions []error
}

// Resolver implements component K.
type Resolver struct {
	Local        localrepo.Manager
	UpdateChecks *updatecheck.Manager
	Connectors   ConnectorFactory
	RepoKey      remoterepo.KeyFunc
	Versions     *rangeresolve.Resolver

	Session *session.Session

	NotFoundCaching      bool
	TransferErrorCaching bool
}

// New builds a Resolver. repoKey defaults to remoterepo.NID if nil.
func New(local localrepo.Manager, checks *updatecheck.Manager, connectors ConnectorFactory, repoKey remoterepo.KeyFunc, versions *rangeresolve.Resolver, sess *session.Session) *Resolver {
	if repoKey == nil {
		repoKey = remoterepo.NID
	}
	return &Resolver{
		Local:                local,
		UpdateChecks:         checks,
		Connectors:           connectors,
		RepoKey:              repoKey,
		Versions:             versions,
		Session:              sess,
		NotFoundCaching:      sess == nil || sess.NotFoundCachingEnabled,
		TransferErrorCaching: sess == nil || sess.TransferErrorCachingEnabled,
	}
}

// workspaceRepository is the synthetic origin reported when a
// WorkspaceReader satisfies the request (spec.md §4.K step 2).
var workspaceRepository = remoterepo.Repository{ID: "workspace"}

// Resolve implements spec.md §4.K's full state machine.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	notify(req.Listener, req.Artifact, false, nil)

	a, result := r.resolveVersion(ctx, req)
	if result != nil {
		notify(req.Listener, req.Artifact, true, firstOrNil(result.Exceptions))
		return *result
	}
	req.Artifact = a

	if r.Session != nil && r.Session.Workspace != nil {
		if path, ok := r.Session.Workspace.FindArtifact(req.Artifact.Key()); ok {
			out := Result{Artifact: req.Artifact.WithFile(path), Repository: workspaceRepository}
			notify(req.Listener, req.Artifact, true, nil)
			return out
		}
	}

	findResult, err := r.Local.Find(localrepo.FindArtifactRequest{
		Artifact:     req.Artifact,
		Context:      req.Context,
		Repositories: repoKeys(r.RepoKey, req.Repositories),
	})
	if err != nil {
		out := Result{Artifact: req.Artifact, Exceptions: []error{err}}
		notify(req.Listener, req.Artifact, true, err)
		return out
	}
	if findResult.Available {
		out := Result{Artifact: req.Artifact.WithFile(findResult.File), Repository: remoterepo.Repository{ID: findResult.OriginRepoKey}}
		notify(req.Listener, req.Artifact, true, nil)
		return out
	}

	var candidateFile string
	if findResult.FileExists {
		candidateFile = findResult.File
	}

	out := r.tryRepositories(ctx, req, findResult.File, candidateFile)
	var finalErr error
	if len(out.Exceptions) > 0 && out.Artifact.File == "" {
		finalErr = out.Exceptions[len(out.Exceptions)-1]
	}
	notify(req.Listener, req.Artifact, true, finalErr)
	return out
}

// resolveVersion re-parses a range/constraint version via
// VersionRangeResolver, choosing the highest surviving version (spec.md
// §4.L "authoritative repository per version" feeding into §4.K step
// 1). A literal version passes through unchanged. Returns a non-nil
// Result only on failure.
func (r *Resolver) resolveVersion(ctx context.Context, req Request) (artifact.Artifact, *Result) {
	if r.Versions == nil {
		return req.Artifact, nil
	}
	vr := r.Versions.Resolve(ctx, rangeresolve.Request{Artifact: req.Artifact, Repositories: req.Repositories, Context: req.Context})
	if len(vr.Versions) == 0 {
		exceptions := vr.Exceptions
		if len(exceptions) == 0 {
			exceptions = []error{NotFoundError.New("no versions matched %s:%s:%s", req.Artifact.GroupID, req.Artifact.ArtifactID, req.Artifact.Version)}
		}
		return req.Artifact, &Result{Artifact: req.Artifact, Exceptions: exceptions}
	}
	resolved := vr.Versions[len(vr.Versions)-1]
	return req.Artifact.WithVersion(resolved.Version.String()), nil
}

func (r *Resolver) tryRepositories(ctx context.Context, req Request, localPath, candidateFile string) Result {
	result := Result{Artifact: req.Artifact}
	offline := r.Session != nil && r.Session.Offline

	for _, repo := range req.Repositories {
		if offline {
			result.Exceptions = append(result.Exceptions, transport.OfflineError.New("session is offline"))
			continue
		}

		repoKey := r.RepoKey(repo)
		policy := repo.PolicyFor(req.Artifact.IsSnapshot()).UpdatePolicy

		check, err := r.UpdateChecks.Check(updatecheck.Check{
			ItemKey:      req.Artifact.Key(),
			RepoKey:      repoKey,
			TrackingPath: localPath + ".lastUpdated",
			LocalFile:    localPath,
			FileExists:   candidateFile != "",
			FileValid:    candidateFile != "",
			Policy:       updatecheck.Policy(policy),
		})
		if err != nil {
			result.Exceptions = append(result.Exceptions, err)
			continue
		}

		if !check.Required {
			if cached, isNotFound := updatecheck.IsNotFound(check.Exception); isNotFound {
				if r.NotFoundCaching {
					result.Exceptions = append(result.Exceptions, check.Exception)
					continue
				}
				_ = cached
			}
			if candidateFile != "" {
				result.Artifact = req.Artifact.WithFile(candidateFile)
				result.Repository = repo
				return result
			}
			continue
		}

		fetchErr := r.fetchOne(ctx, req.Artifact, repo, localPath)
		touchErr := r.UpdateChecks.Touch(check, fetchErr)
		if touchErr != nil {
			result.Exceptions = append(result.Exceptions, touchErr)
		}
		if fetchErr != nil {
			result.Exceptions = append(result.Exceptions, fetchErr)
			continue
		}

		result.Artifact = req.Artifact.WithFile(localPath)
		result.Repository = repo
		if err := r.Local.Add(localrepo.LocalArtifactRegistration{
			Artifact: req.Artifact,
			RepoKeys: []string{repoKey},
			Contexts: []string{req.Context},
		}); err != nil {
			result.Exceptions = append(result.Exceptions, err)
		}
		return result
	}

	if candidateFile != "" {
		result.Artifact = req.Artifact.WithFile(candidateFile)
	}
	if result.Artifact.File == "" && len(result.Exceptions) == 0 {
		result.Exceptions = append(result.Exceptions, NotFoundError.New("%s not found in any repository", req.Artifact.Key()))
	}
	return result
}

func (r *Resolver) fetchOne(ctx context.Context, a artifact.Artifact, repo remoterepo.Repository, localPath string) error {
	if r.Connectors == nil {
		return Error.New("no connector factory configured")
	}
	conn, err := r.Connectors(repo)
	if err != nil {
		return Error.Wrap(err)
	}
	remotePath := conn.Layout.ArtifactPath(a)
	policyName := repo.PolicyFor(a.IsSnapshot()).ChecksumPolicy

	dl := &connector.ArtifactDownload{
		Artifact:       a,
		RemotePath:     remotePath,
		LocalPath:      localPath,
		ChecksumPolicy: checksum.ParsePolicy(string(policyName)),
	}
	if err := conn.Get(ctx, []*connector.ArtifactDownload{dl}, nil); err != nil {
		return Error.Wrap(err)
	}
	return dl.Exception
}

func repoKeys(keyFunc remoterepo.KeyFunc, repos []remoterepo.Repository) []string {
	keys := make([]string, len(repos))
	for i, repo := range repos {
		keys[i] = keyFunc(repo)
	}
	return keys
}

func firstOrNil(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	return errors[0]
}

func notify(l Listener, a artifact.Artifact, resolved bool, err error) {
	if l == nil {
		return
	}
	if !resolved {
		l.ArtifactResolving(a)
		return
	}
	l.ArtifactResolved(a, err)
}
