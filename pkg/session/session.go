// Package session implements the per-call transient caches named in
// spec.md §3 "Lifecycle": descriptor pool, data pool, update-check
// memo, and auth cache. A Session is shared across the goroutines
// serving one resolve/collect/install/deploy call; its caches are
// concurrent maps keyed by immutable fingerprints (spec.md §5 "Shared
// caches").
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/apache/maven-resolver-sub005/pkg/tracking"
	"github.com/apache/maven-resolver-sub005/pkg/updatecheck"
)

// WorkspaceReader is the external collaborator consulted before the
// local repository (spec.md §4.K step 2); nil means no workspace is in
// effect.
type WorkspaceReader interface {
	FindArtifact(key string) (path string, ok bool)
	WorkspaceRepositoryKey() string
}

// Session carries everything scoped to one call tree: identity,
// offline/update-policy overrides, and the memoized caches.
type Session struct {
	ID string

	Offline              bool
	UpdatePolicyOverride string
	ChecksumPolicyOverride string

	NotFoundCachingEnabled      bool
	TransferErrorCachingEnabled bool

	Workspace WorkspaceReader

	TrackingStore tracking.Backend
	UpdateChecks  *updatecheck.Manager

	descriptorPool sync.Map // key: artifact key + repo set fingerprint -> result
	dataPool       sync.Map // key: arbitrary fingerprint -> cached value
	authCache      sync.Map // key: repository key -> credentials
}

// New builds a Session with its own file-backed tracking store and
// update-check manager (each Session gets an independent at-most-once
// memo, per spec.md §3 "Every UpdateCheck performed within a single
// session").
func New() *Session {
	return NewWithTrackingBackend(tracking.NewStore())
}

// NewWithTrackingBackend builds a Session against an explicit
// tracking.Backend, letting a caller opt into the bbolt-backed store
// (pkg/config "TrackingBackend").
func NewWithTrackingBackend(store tracking.Backend) *Session {
	return &Session{
		ID:                          uuid.NewString(),
		NotFoundCachingEnabled:      true,
		TransferErrorCachingEnabled: true,
		TrackingStore:               store,
		UpdateChecks:                updatecheck.NewManager(store, nil),
	}
}

// DescriptorPool returns the cached value for key, computing and
// storing it via compute if absent. Concurrent callers requesting the
// same key share one computed result (spec.md §4.M step 5: "identical
// concurrent requests share the same computed result").
func (s *Session) DescriptorPool(key string, compute func() (interface{}, error)) (interface{}, error) {
	return loadOrCompute(&s.descriptorPool, key, compute)
}

// DataPool is the general-purpose analogue of DescriptorPool for
// version-range lookups and other memoizable I/O (spec.md §3
// "data pool").
func (s *Session) DataPool(key string, compute func() (interface{}, error)) (interface{}, error) {
	return loadOrCompute(&s.dataPool, key, compute)
}

// AuthCache returns cached credentials for repoKey, if any.
func (s *Session) AuthCache(repoKey string) (interface{}, bool) {
	return s.authCache.Load(repoKey)
}

// StoreAuth records credentials for repoKey.
func (s *Session) StoreAuth(repoKey string, value interface{}) {
	s.authCache.Store(repoKey, value)
}

// inflight lets concurrent callers for the same key wait on the first
// caller's computation rather than recomputing, without holding the
// map's lock during the (potentially I/O-bound) compute call.
type inflight struct {
	done  chan struct{}
	value interface{}
	err   error
}

func loadOrCompute(m *sync.Map, key string, compute func() (interface{}, error)) (interface{}, error) {
	f := &inflight{done: make(chan struct{})}
	actual, loaded := m.LoadOrStore(key, f)
	entry := actual.(*inflight)
	if loaded {
		<-entry.done
		return entry.value, entry.err
	}
	entry.value, entry.err = compute()
	close(entry.done)
	return entry.value, entry.err
}
