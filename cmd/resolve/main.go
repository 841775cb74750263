// Command resolve is a minimal cobra front-end over this module's
// collect/resolve/install pipeline (spec.md names CLI front-ends out of
// scope, but the teacher's own packages are never without a cmd/ entry
// point exercising them end to end).
//
// Grounded on storj-storj's pkg/process/exec_conf_test.go cobra+viper
// convention (a root command binding a Config struct's flags, env vars
// read through the same keys) adapted to this module's three verbs.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/collect"
	"github.com/apache/maven-resolver-sub005/pkg/config"
	"github.com/apache/maven-resolver-sub005/pkg/connector"
	"github.com/apache/maven-resolver-sub005/pkg/deploy"
	"github.com/apache/maven-resolver-sub005/pkg/layout"
	"github.com/apache/maven-resolver-sub005/pkg/localrepo"
	"github.com/apache/maven-resolver-sub005/pkg/metadata"
	"github.com/apache/maven-resolver-sub005/pkg/rangeresolve"
	"github.com/apache/maven-resolver-sub005/pkg/remoterepo"
	"github.com/apache/maven-resolver-sub005/pkg/resolve"
	"github.com/apache/maven-resolver-sub005/pkg/session"
	"github.com/apache/maven-resolver-sub005/pkg/syncctx"
	"github.com/apache/maven-resolver-sub005/pkg/system"
	"github.com/apache/maven-resolver-sub005/pkg/tracking"
	"github.com/apache/maven-resolver-sub005/pkg/transport"
)

var (
	cfgFile string
	cfg     config.Config
	repoURL []string
	local   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "resolve",
		Short: "Collect, resolve and install Maven-style artifacts",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Precedence (env/file/defaults) is resolved entirely by
			// config.Load; the flags config.Bind registers below exist
			// for discoverability and documentation of the surface,
			// matching the teacher's cobra+viper convention, but this
			// minimal CLI does not layer flag overrides on top.
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file")
	root.PersistentFlags().StringArrayVar(&repoURL, "repo", nil, "remote repository URL (repeatable); file:// or http(s)://")
	root.PersistentFlags().StringVar(&local, "local", "", "local repository directory")
	config.Bind(root, v)

	root.AddCommand(newGetCmd(), newInstallCmd(), newCollectCmd())
	return root
}

func parseCoordinate(s string) (artifact.Artifact, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return artifact.Artifact{}, fmt.Errorf("coordinate %q must be groupId:artifactId:version", s)
	}
	return artifact.New(parts[0], parts[1], parts[2]), nil
}

// buildLocalRepo picks Simple or Enhanced, and file- or bolt-backed
// tracking, following cfg (spec.md §6 "Configuration surface").
func buildLocalRepo(basedir string, lay layout.Layout) (localrepo.Manager, func() error, error) {
	closer := func() error { return nil }
	split := localrepo.SplitConfig{
		InstalledVsCached: cfg.SplitInstalledVsCached,
		ReleaseVsSnapshot: cfg.SplitReleaseVsSnapshot,
		PerRemote:         cfg.SplitPerRemote,
	}
	if !split.InstalledVsCached && !split.ReleaseVsSnapshot && !split.PerRemote {
		return localrepo.NewSimple(basedir, lay), closer, nil
	}

	var backend tracking.Backend = tracking.NewStore()
	if cfg.TrackingBackend == "bolt" {
		path := cfg.TrackingBoltPath
		if path == "" {
			path = basedir + "/_tracking.bolt"
		}
		b, err := tracking.OpenBolt(path)
		if err != nil {
			return nil, closer, err
		}
		backend = b
		closer = b.Close
	}
	return localrepo.NewEnhancedWithBackend(basedir, lay, split, backend), closer, nil
}

func repoKeyFunc() remoterepo.KeyFunc {
	if cfg.RepositoryKeyFunction == "id-url-hash" {
		return remoterepo.NIDHurl
	}
	return remoterepo.NID
}

func transportConfig() transport.Config {
	return transport.Config{
		Headers:         cfg.HTTPHeaders,
		UserAgent:       cfg.HTTPUserAgent,
		ConnectTimeout:  cfg.HTTPConnectTimeout,
		RequestTimeout:  cfg.HTTPRequestTimeout,
		ResumeSupported: cfg.ResumeSupported,
		ResumeThreshold: cfg.ResumeThreshold,
	}
}

func factoryFor(url string) transport.Factory {
	if strings.HasPrefix(url, "file://") {
		return transport.NewFileFactory()
	}
	return transport.NewHTTPFactory(transportConfig())
}

func buildConnector(ctx context.Context, repo remoterepo.Repository, lay layout.Layout) (*connector.Connector, error) {
	t, err := factoryFor(repo.URL).New(ctx, repo.URL, transportConfig())
	if err != nil {
		return nil, err
	}
	return connector.New(t, lay), nil
}

func buildRepositories() []remoterepo.Repository {
	repos := make([]remoterepo.Repository, len(repoURL))
	for i, url := range repoURL {
		repos[i] = remoterepo.Repository{
			ID:              fmt.Sprintf("repo-%d", i+1),
			URL:             url,
			ReleasesPolicy:  remoterepo.DefaultPolicy(),
			SnapshotsPolicy: remoterepo.DefaultPolicy(),
		}
	}
	return repos
}

// buildSystem wires one System instance sharing the command-line's
// local repository, session and repositories across every verb.
// rootKey/rootDeps feed leafDescriptorReader, the only way the
// "collect" verb's --dependency flags reach the graph (get/install pass
// the zero value).
func buildSystem(lay layout.Layout, localMgr localrepo.Manager, rootKey string, rootDeps []artifact.Dependency) (*system.System, error) {
	sess := session.New()
	keyFn := repoKeyFunc()

	metaConnectors := metadata.ConnectorFactory(func(repo remoterepo.Repository) (*connector.Connector, error) {
		return buildConnector(context.Background(), repo, lay)
	})
	metaResolver := metadata.New(localMgr, sess.UpdateChecks, metaConnectors, keyFn, sess)

	versions := rangeresolve.New(metaResolver)

	resolveConnectors := resolve.ConnectorFactory(func(repo remoterepo.Repository) (*connector.Connector, error) {
		return buildConnector(context.Background(), repo, lay)
	})
	resolver := resolve.New(localMgr, sess.UpdateChecks, resolveConnectors, keyFn, versions, sess)

	syncFactory := syncctx.NewLocal(localMgr.PathForLocalArtifact, localMgr.PathForLocalMetadata)
	installer := deploy.NewInstaller(localMgr, syncFactory)

	deployConnectors := deploy.ConnectorFactory(func(repo remoterepo.Repository) (*connector.Connector, error) {
		return buildConnector(context.Background(), repo, lay)
	})
	deployer := deploy.NewDeployer(installer, syncFactory, deployConnectors, metaResolver, keyFn)

	repoManager := remoterepo.NewManager(nil, nil, nil)
	descriptors := leafDescriptorReader{rootKey: rootKey, rootDeps: rootDeps}
	collector := collect.New(descriptors, versions, repoManager, sess)

	return system.New(system.Config{
		Collector: collector,
		Resolver:  resolver,
		Metadata:  metaResolver,
		Installer: installer,
		Deployer:  deployer,
	})
}

// leafDescriptorReader is the ArtifactDescriptorReader this command
// plugs into pkg/collect: effective-model computation is explicitly a
// caller concern (pkg/artifact/descriptor.go), and this command has no
// POM interpreter of its own. It answers rootKey's own descriptor with
// rootDeps (so --dependency reaches the graph) and every other artifact
// with no further dependencies, which also bounds recursion to one
// level below the root.
type leafDescriptorReader struct {
	rootKey  string
	rootDeps []artifact.Dependency
}

func (r leafDescriptorReader) ReadArtifactDescriptor(req artifact.ArtifactDescriptorRequest) (artifact.ArtifactDescriptorResult, error) {
	result := artifact.ArtifactDescriptorResult{Artifact: req.Artifact}
	if req.Artifact.Key() == r.rootKey {
		result.Dependencies = r.rootDeps
	}
	return result, nil
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <groupId:artifactId:version>",
		Short: "Resolve one artifact's file from the configured repositories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseCoordinate(args[0])
			if err != nil {
				return err
			}
			lay := layout.NewMaven2()
			localMgr, closeLocal, err := buildLocalRepo(local, lay)
			if err != nil {
				return err
			}
			defer closeLocal()

			sys, err := buildSystem(lay, localMgr, a.Key(), nil)
			if err != nil {
				return err
			}
			result := sys.ResolveArtifact(cmd.Context(), resolve.Request{
				Artifact:     a,
				Repositories: buildRepositories(),
			})
			if len(result.Exceptions) > 0 {
				return fmt.Errorf("resolution failed: %v", result.Exceptions)
			}
			fmt.Println(result.Artifact.File)
			return nil
		},
	}
}

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <groupId:artifactId:version> <file>",
		Short: "Install a local file into the local repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseCoordinate(args[0])
			if err != nil {
				return err
			}
			a = a.WithFile(args[1])

			lay := layout.NewMaven2()
			localMgr, closeLocal, err := buildLocalRepo(local, lay)
			if err != nil {
				return err
			}
			defer closeLocal()

			sys, err := buildSystem(lay, localMgr, a.Key(), nil)
			if err != nil {
				return err
			}
			result, err := sys.Install(cmd.Context(), deploy.InstallRequest{
				Artifacts: []deploy.ArtifactItem{{Artifact: a, LocalPath: args[1]}},
			})
			if err != nil {
				return err
			}
			if err := result.Err(); err != nil {
				return err
			}
			fmt.Printf("installed %s\n", a.String())
			return nil
		},
	}
}

func newCollectCmd() *cobra.Command {
	var deps []string
	cmd := &cobra.Command{
		Use:   "collect <groupId:artifactId:version>",
		Short: "Collect and print the dependency graph rooted at one artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := parseCoordinate(args[0])
			if err != nil {
				return err
			}
			dependencies := make([]artifact.Dependency, len(deps))
			for i, d := range deps {
				da, err := parseCoordinate(d)
				if err != nil {
					return err
				}
				dependencies[i] = artifact.Dependency{Artifact: da}
			}

			lay := layout.NewMaven2()
			localMgr, closeLocal, err := buildLocalRepo(local, lay)
			if err != nil {
				return err
			}
			defer closeLocal()

			sys, err := buildSystem(lay, localMgr, root.Key(), dependencies)
			if err != nil {
				return err
			}
			result, err := sys.CollectDependencies(cmd.Context(), collect.Request{
				RootArtifact: &root,
				Dependencies: dependencies,
				Repositories: buildRepositories(),
			})
			if err != nil {
				return err
			}
			printNode(result.Root, 0)
			for _, exc := range result.Exceptions {
				fmt.Fprintln(os.Stderr, "exception:", exc)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&deps, "dependency", nil, "direct dependency coordinate (repeatable)")
	return cmd
}

func printNode(n *collect.Node, depth int) {
	if n == nil {
		return
	}
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), n.Dependency.Artifact.String())
	for _, child := range n.Children {
		printNode(child, depth+1)
	}
}
