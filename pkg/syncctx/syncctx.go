// Package syncctx implements component P, SyncContext: coarse-grained
// locking around artifact/metadata sets for concurrent sessions.
//
// Grounded on golang-dep's SourceMgr global lock (glock sync.RWMutex,
// _examples/other_examples/source_manager.go) for the "one process-wide
// lock guarding local repository mutation" shape, generalized here to a
// per-canonical-path lock set so unrelated artifacts don't serialize
// against each other.
package syncctx

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/zeebo/errs"
)

// Error is the namespaced error class for this package.
var Error = errs.Class("syncctx")

// Factory builds a SyncContext; swap in a file-system-lock or
// distributed-lock-service implementation by providing a different
// Factory (spec.md §4.P "pluggable for file-system locks or a
// distributed service").
type Factory interface {
	NewContext(shared bool) Context
}

// Context is acquired before any write to local repository files and
// released on every exit path; Release is idempotent (spec.md §4.P,
// §5 "Locking discipline").
type Context interface {
	Acquire(ctx context.Context, artifacts []artifact.Artifact, metadatas []artifact.Metadata) error
	Release()
}

// Local is the default in-process Factory/Context: one named mutex per
// canonical local file path of each item, acquired exclusively or
// shared per request. Checksum side-cars and tracking files get no
// mutex of their own.
type Local struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex

	resolvePath func(a artifact.Artifact) string
	resolveMetaPath func(m artifact.Metadata) string
}

// NewLocal builds a Local factory. resolvePath/resolveMetaPath should
// typically be a LocalRepositoryManager's path functions.
func NewLocal(resolvePath func(artifact.Artifact) string, resolveMetaPath func(artifact.Metadata) string) *Local {
	return &Local{
		locks:           make(map[string]*sync.RWMutex),
		resolvePath:     resolvePath,
		resolveMetaPath: resolveMetaPath,
	}
}

// NewContext implements Factory.
func (f *Local) NewContext(shared bool) Context {
	return &localContext{factory: f, shared: shared}
}

func (f *Local) lockFor(path string) *sync.RWMutex {
	canon := filepath.Clean(path)
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[canon]
	if !ok {
		l = &sync.RWMutex{}
		f.locks[canon] = l
	}
	return l
}

type localContext struct {
	factory *Local
	shared  bool

	mu      sync.Mutex
	held    []*sync.RWMutex
	released bool
}

// Acquire implements Context. Paths are locked in a fixed sorted order
// to avoid deadlocking against another Context acquiring an overlapping
// set, and re-entrant acquisition of an already-held path within the
// same Context is a no-op (spec.md §4.P "safe against identical
// re-entry within one session").
func (c *localContext) Acquire(ctx context.Context, artifacts []artifact.Artifact, metadatas []artifact.Metadata) error {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, a := range artifacts {
		add(c.factory.resolvePath(a))
	}
	for _, m := range metadatas {
		add(c.factory.resolveMetaPath(m))
	}
	sort.Strings(paths)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		l := c.factory.lockFor(p)
		alreadyHeld := false
		for _, h := range c.held {
			if h == l {
				alreadyHeld = true
				break
			}
		}
		if alreadyHeld {
			continue
		}
		if c.shared {
			l.RLock()
		} else {
			l.Lock()
		}
		c.held = append(c.held, l)
	}
	return nil
}

// Release implements Context; it is idempotent.
func (c *localContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	for i := len(c.held) - 1; i >= 0; i-- {
		if c.shared {
			c.held[i].RUnlock()
		} else {
			c.held[i].Unlock()
		}
	}
	c.held = nil
	c.released = true
}
