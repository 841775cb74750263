// Package system implements component Q, the RepositorySystem facade: a
// single struct of injected capability interfaces exposing the
// operations a caller actually wants (collect, resolve, install,
// deploy) without needing to know how the collaborators wire together.
//
// Grounded on storj-storj's pkg/process.Service pattern (a struct of
// injected dependencies, validated at construction) and on spec.md
// §4.Q.
package system

import (
	"context"

	"github.com/zeebo/errs"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/apache/maven-resolver-sub005/pkg/collect"
	"github.com/apache/maven-resolver-sub005/pkg/conflict"
	"github.com/apache/maven-resolver-sub005/pkg/deploy"
	"github.com/apache/maven-resolver-sub005/pkg/metadata"
	"github.com/apache/maven-resolver-sub005/pkg/resolve"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("system")

// Config names System's collaborators. Resolver and Metadata are
// required; Collector, Installer and Deployer are optional, since a
// caller that only ever resolves artifacts has no use for the others.
type Config struct {
	Collector       *collect.Collector
	ConflictOptions conflict.Options

	Resolver *resolve.Resolver
	Metadata *metadata.Resolver

	Installer *deploy.Installer
	Deployer  *deploy.Deployer

	// Parallelism bounds ResolveArtifacts' concurrent fan-out; defaults
	// to 5 to match pkg/connector's conventional pool size (spec.md §5).
	Parallelism int
}

// System is the facade a caller constructs once per application,
// mirroring the teacher's pkg/process.Service: a plain struct of
// capability interfaces, validated at construction rather than on
// every call.
type System struct {
	cfg        Config
	dispatcher *Dispatcher
}

// New validates cfg and builds a System. Resolver and Metadata must be
// set; everything else is optional.
func New(cfg Config) (*System, error) {
	if cfg.Resolver == nil {
		return nil, Error.New("resolver is required")
	}
	if cfg.Metadata == nil {
		return nil, Error.New("metadata resolver is required")
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 5
	}
	return &System{cfg: cfg, dispatcher: NewDispatcher()}, nil
}

// Dispatcher returns the System's event fan-out; register
// EventListeners on it before issuing calls that should be observed.
func (s *System) Dispatcher() *Dispatcher { return s.dispatcher }

// CollectDependencies builds the dependency graph and applies conflict
// resolution to it, per spec.md §4.M/§4.N run back to back.
func (s *System) CollectDependencies(ctx context.Context, req collect.Request) (collect.Result, error) {
	if s.cfg.Collector == nil {
		return collect.Result{}, Error.New("no collector configured")
	}
	result := s.cfg.Collector.Collect(ctx, req)
	if result.Root != nil {
		conflict.Transform(result.Root, s.cfg.ConflictOptions)
	}
	return result, nil
}

// ResolveArtifact resolves one artifact, routing resolve events to the
// System's Dispatcher when the request doesn't already name a Listener.
func (s *System) ResolveArtifact(ctx context.Context, req resolve.Request) resolve.Result {
	if req.Listener == nil {
		req.Listener = s.dispatcher.AsResolveListener()
	}
	return s.cfg.Resolver.Resolve(ctx, req)
}

// ResolveArtifacts resolves every request concurrently, bounded by
// Config.Parallelism, matching pkg/connector's errgroup+semaphore pool
// (spec.md §5). Results align with reqs by index.
func (s *System) ResolveArtifacts(ctx context.Context, reqs []resolve.Request) []resolve.Result {
	results := make([]resolve.Result, len(reqs))
	sem := semaphore.NewWeighted(int64(s.cfg.Parallelism))
	g, gctx := errgroup.WithContext(ctx)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] = resolve.Result{Artifact: req.Artifact, Exceptions: []error{err}}
				return nil
			}
			defer sem.Release(1)
			results[i] = s.ResolveArtifact(gctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ResolveMetadata resolves one metadata document.
func (s *System) ResolveMetadata(ctx context.Context, req metadata.Request) metadata.Result {
	return s.cfg.Metadata.Resolve(ctx, req)
}

// Install writes artifacts/metadata into the local repository, routing
// install events to the System's Dispatcher when the request doesn't
// already name a Listener.
func (s *System) Install(ctx context.Context, req deploy.InstallRequest) (deploy.Result, error) {
	if s.cfg.Installer == nil {
		return deploy.Result{}, Error.New("no installer configured")
	}
	if req.Listener == nil {
		req.Listener = s.dispatcher.AsDeployListener()
	}
	return s.cfg.Installer.Install(ctx, req), nil
}

// Deploy ships artifacts/metadata to a remote repository, routing
// deploy events to the System's Dispatcher when the request doesn't
// already name a Listener.
func (s *System) Deploy(ctx context.Context, req deploy.DeployRequest) (deploy.Result, error) {
	if s.cfg.Deployer == nil {
		return deploy.Result{}, Error.New("no deployer configured")
	}
	if req.Listener == nil {
		req.Listener = s.dispatcher.AsDeployListener()
	}
	return s.cfg.Deployer.Deploy(ctx, req), nil
}
