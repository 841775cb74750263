// Package metadata implements component J, MetadataResolver: resolving
// a single Metadata document against the local repository and, when
// required, a list of remote repositories -- the Metadata analogue of
// pkg/resolve's ArtifactResolver state machine, extended with the two
// metadata-only request flags named in spec.md §4.J.
//
// Grounded on spec.md §4.J/§4.K for the state machine, and on
// storj-storj's overlay.Config.Run pattern (dispatch across a list of
// candidate backends, stopping at the first that succeeds) for the
// per-repository loop shape.
package metadata

import (
	"context"
	"os"
	"strings"

	"github.com/zeebo/errs"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/checksum"
	"github.com/apache/maven-resolver-sub005/pkg/connector"
	"github.com/apache/maven-resolver-sub005/pkg/localrepo"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/session"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
	"github.com/apache/maven-resolver-sub005/pkg/updatecheck"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("metadata")

// ConnectorFactory builds (or reuses) a Connector for the given
// repository, keyed however the caller's RemoteRepositoryManager keys
// repositories.
type ConnectorFactory func(repo remoterepo.Repository) (*connector.Connector, error)

// Request names one metadata document to resolve, the repositories to
// consult (in trial order), and the metadata-only flags of spec.md
// §4.J.
type Request struct {
	Metadata                 artifact.Metadata
	Context                  string
	Repositories             []remoterepo.Repository
	FavorLocalRepository     bool
	DeleteLocalCopyIfMissing bool
}

// Result is what Resolve returns: the resolved local file (if any), and
// the repository that most recently supplied it, if a remote fetch
// occurred.
type Result struct {
	Metadata    artifact.Metadata
	File        string
	FileExists  bool
	UpdatedFrom string // repository key, empty if served from local/workspace
	Exceptions  []error
}

// Resolver implements component J.
type Resolver struct {
	Local        localrepo.Manager
	UpdateChecks *updatecheck.Manager
	Connectors   ConnectorFactory
	RepoKey      remoterepo.KeyFunc

	Session *session.Session
}

// New builds a Resolver. repoKey defaults to remoterepo.NID if nil.
func New(local localrepo.Manager, checks *updatecheck.Manager, connectors ConnectorFactory, repoKey remoterepo.KeyFunc, sess *session.Session) *Resolver {
	if repoKey == nil {
		repoKey = remoterepo.NID
	}
	return &Resolver{Local: local, UpdateChecks: checks, Connectors: connectors, RepoKey: repoKey, Session: sess}
}

// Resolve implements spec.md §4.J: favor-local short-circuit, then the
// per-repository offline/update-check/download loop, stopping at the
// first repository that supplies a file.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	localPath := r.Local.PathForLocalMetadata(req.Metadata)
	result := Result{Metadata: req.Metadata, File: localPath}

	if _, err := os.Stat(localPath); err == nil {
		result.FileExists = true
		if req.FavorLocalRepository {
			return result
		}
	}

	offline := r.Session != nil && r.Session.Offline
	for _, repo := range req.Repositories {
		if offline {
			result.Exceptions = append(result.Exceptions, transport.OfflineError.New("session is offline"))
			continue
		}

		repoKey := r.RepoKey(repo)
		policy := updatecheck.Effective(
			updatecheck.Policy(repo.ReleasesPolicy.UpdatePolicy),
			updatecheck.Policy(repo.SnapshotsPolicy.UpdatePolicy),
		)

		check, err := r.UpdateChecks.Check(updatecheck.Check{
			ItemKey:      req.Metadata.Key(),
			RepoKey:      repoKey,
			TrackingPath: localPath + ".lastUpdated",
			LocalFile:    localPath,
			FileExists:   result.FileExists,
			FileValid:    result.FileExists,
			Policy:       policy,
		})
		if err != nil {
			result.Exceptions = append(result.Exceptions, err)
			continue
		}
		if !check.Required {
			if result.FileExists {
				return result
			}
			continue
		}

		_, fetchErr := r.fetchOne(ctx, req.Metadata, repo, localPath)
		touchErr := r.UpdateChecks.Touch(check, fetchErr)
		if touchErr != nil {
			result.Exceptions = append(result.Exceptions, touchErr)
		}

		if fetchErr != nil {
			result.Exceptions = append(result.Exceptions, fetchErr)
			if cached, isNotFound := updatecheck.IsNotFound(fetchErr); isNotFound && !cached && req.DeleteLocalCopyIfMissing {
				_ = os.Remove(localPath)
				result.FileExists = false
			}
			continue
		}

		result.FileExists = true
		result.UpdatedFrom = repoKey
		if err := r.Local.AddMetadata(localrepo.LocalMetadataRegistration{
			Metadata: req.Metadata,
			RepoKey:  repoKey,
			Contexts: []string{req.Context},
		}); err != nil {
			result.Exceptions = append(result.Exceptions, err)
		}
		return result
	}

	return result
}

// fetchOne downloads req's metadata from repo into localPath via that
// repository's Connector, applying the repository's checksum policy.
func (r *Resolver) fetchOne(ctx context.Context, m artifact.Metadata, repo remoterepo.Repository, localPath string) (string, error) {
	if r.Connectors == nil {
		return "", Error.New("no connector factory configured")
	}
	conn, err := r.Connectors(repo)
	if err != nil {
		return "", Error.Wrap(err)
	}

	remotePath := conn.Layout.MetadataPath(m)
	policyName := repo.PolicyFor(m.Nature == artifact.Snapshot).ChecksumPolicy
	dl := &connector.MetadataDownload{
		RemotePath:     remotePath,
		LocalPath:      localPath,
		ChecksumPolicy: checksum.ParsePolicy(string(policyName)),
	}
	if err := conn.Get(ctx, nil, []*connector.MetadataDownload{dl}); err != nil {
		return "", Error.Wrap(err)
	}
	if dl.Exception != nil {
		if isNotFoundTransport(dl.Exception) {
			return "", updatecheck.NotFoundError(false, "%v", dl.Exception)
		}
		return "", dl.Exception
	}
	return remotePath, nil
}

func isNotFoundTransport(err error) bool {
	return strings.Contains(err.Error(), "not found")
}
