package updatecheck

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/apache/maven-resolver-sub005/pkg/tracking"
)

// Check is the transient per-attempt record named UpdateCheck<T,E> in
// spec.md §3. ItemKey/RepoKey together form the session memo key;
// TrackingPath names the side-car file recording prior outcomes for
// this item (one side-car per item, shared across repositories).
type Check struct {
	ItemKey       string
	RepoKey       string
	TrackingPath  string
	LocalFile     string
	FileExists    bool
	FileValid     bool
	Policy        Policy
	LocalLastUpdated time.Time

	// Outputs, filled in by Manager.Check.
	Required  bool
	Exception error
}

// memoKey is (itemKey, repoKey): spec.md §3 "Every UpdateCheck performed
// within a single session is performed at most once per (item-key,
// repository-key)".
type memoKey struct {
	item string
	repo string
}

// Manager implements component G. One Manager is owned per session so
// the at-most-once memoization is scoped correctly (spec.md §5 "a
// single session object may serialize certain updates ... internally").
type Manager struct {
	store tracking.Backend
	now   func() time.Time

	mu   sync.Mutex
	memo map[memoKey]Check
}

// NewManager builds a Manager backed by store. now defaults to
// time.Now if nil.
func NewManager(store tracking.Backend, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, now: now, memo: make(map[memoKey]Check)}
}

// notFoundErr is a sentinel NotFound error kind, surfaced both on a
// genuinely missing file and on a cached not-found outcome (with
// "cached" in the message, spec.md §7).
type notFoundErr struct {
	cached bool
	msg    string
}

func (e *notFoundErr) Error() string { return e.msg }

// NotFoundError builds the NotFound exception used by callers outside
// this package (pkg/resolve, pkg/metadata) to recognize a not-found
// outcome.
func NotFoundError(cached bool, format string, args ...interface{}) error {
	return &notFoundErr{cached: cached, msg: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is (or wraps) a not-found outcome, and
// whether it was served from cache.
func IsNotFound(err error) (cached bool, ok bool) {
	if nf, is := err.(*notFoundErr); is {
		return nf.cached, true
	}
	return false, false
}

// Check implements spec.md §4.G checkArtifact/checkMetadata:
//  1. Consult the session memo; a repeated (itemKey, repoKey) reuses the
//     first outcome unconditionally, even under UPDATE_POLICY_ALWAYS.
//  2. If the item has no local file or FileValid is false, force
//     required=true, UNLESS policy=never and there is no tracked
//     timestamp at all, in which case required=false with a (not
//     cached) NotFound exception.
//  3. Otherwise consult the tracking side-car for a remembered
//     lastUpdated/error for this repo key and apply IsUpdateRequired.
func (m *Manager) Check(c Check) (Check, error) {
	key := memoKey{item: c.ItemKey, repo: c.RepoKey}

	m.mu.Lock()
	if cached, ok := m.memo[key]; ok {
		m.mu.Unlock()
		return cached, cached.Exception
	}
	m.mu.Unlock()

	result, err := m.evaluate(c)

	m.mu.Lock()
	m.memo[key] = result
	m.mu.Unlock()
	return result, err
}

func (m *Manager) evaluate(c Check) (Check, error) {
	props, err := m.store.Read(c.TrackingPath)
	if err != nil {
		return c, err
	}

	lastUpdatedRaw, hasTimestamp := props[c.RepoKey]
	var lastUpdated time.Time
	if hasTimestamp {
		if ms, perr := strconv.ParseInt(lastUpdatedRaw, 10, 64); perr == nil {
			lastUpdated = time.UnixMilli(ms)
		}
	}
	cachedErrMsg, hasCachedErr := props[c.RepoKey+".error"]

	if !c.FileExists || !c.FileValid {
		if c.Policy == Never && !hasTimestamp {
			c.Required = false
			c.Exception = NotFoundError(false, "%s not found locally and update policy is never", c.ItemKey)
			return c, c.Exception
		}
		c.Required = true
		return c, nil
	}

	if hasCachedErr {
		c.Required = false
		c.Exception = NotFoundError(true, "cached: %s", cachedErrMsg)
		return c, c.Exception
	}

	c.Required = IsUpdateRequired(m.now(), lastUpdated, c.Policy)
	return c, nil
}

// Touch records a check's outcome in the tracking side-car: a
// successful recheck stores the current timestamp for the repo key; a
// not-found outcome additionally stores an error message, used to drive
// subsequent not-found caching (spec.md §4.K "Not-found caching").
func (m *Manager) Touch(c Check, outcomeErr error) error {
	return m.store.Update(c.TrackingPath, func(props tracking.Properties) tracking.Properties {
		props[c.RepoKey] = strconv.FormatInt(m.now().UnixMilli(), 10)
		if outcomeErr != nil {
			props[c.RepoKey+".error"] = outcomeErr.Error()
		} else {
			delete(props, c.RepoKey+".error")
		}
		return props
	})
}
